// Package text resolves the user-facing strings shown by the gate's alerts.
package text

import "github.com/asimihsan/manup/pkg/gate"

// MessageKey names one string in the manup namespace.
type MessageKey string

// Every string an alert can show.
const (
	KeyMandatoryTitle   MessageKey = "manup.mandatory.title"
	KeyMandatoryText    MessageKey = "manup.mandatory.text"
	KeyOptionalTitle    MessageKey = "manup.optional.title"
	KeyOptionalText     MessageKey = "manup.optional.text"
	KeyMaintenanceTitle MessageKey = "manup.maintenance.title"
	KeyMaintenanceText  MessageKey = "manup.maintenance.text"
	KeyButtonUpdate     MessageKey = "manup.buttons.update"
	KeyButtonLater      MessageKey = "manup.buttons.later"
)

// AllKeys lists every MessageKey.
var AllKeys = []MessageKey{
	KeyMandatoryTitle, KeyMandatoryText,
	KeyOptionalTitle, KeyOptionalText,
	KeyMaintenanceTitle, KeyMaintenanceText,
	KeyButtonUpdate, KeyButtonLater,
}

// builtin is the last-resort English text. {{app}} is the app name.
var builtin = map[MessageKey]string{
	KeyMandatoryTitle:   "Update Required",
	KeyMandatoryText:    "An update to {{app}} is required to continue.",
	KeyOptionalTitle:    "Update Available",
	KeyOptionalText:     "An update to {{app}} is available. Would you like to update?",
	KeyMaintenanceTitle: "{{app}} Unavailable",
	KeyMaintenanceText:  "{{app}} is currently unavailable. Please check back later.",
	KeyButtonUpdate:     "Update",
	KeyButtonLater:      "Not Now",
}

// TitleKey and BodyKey return the keys for an alert's header and sub-header.
func TitleKey(d gate.Decision) MessageKey {
	switch d {
	case gate.DecisionMandatory:
		return KeyMandatoryTitle
	case gate.DecisionOptional:
		return KeyOptionalTitle
	default:
		return KeyMaintenanceTitle
	}
}

func BodyKey(d gate.Decision) MessageKey {
	switch d {
	case gate.DecisionMandatory:
		return KeyMandatoryText
	case gate.DecisionOptional:
		return KeyOptionalText
	default:
		return KeyMaintenanceText
	}
}

// overrideFor returns the custom text the branch supplies for key, if any.
func overrideFor(key MessageKey, branch gate.PolicyBranch) (string, bool) {
	var (
		text  *gate.AlertText
		title bool
	)
	switch key {
	case KeyMandatoryTitle, KeyMandatoryText:
		text, title = branch.CustomAlerts.For(gate.DecisionMandatory), key == KeyMandatoryTitle
	case KeyOptionalTitle, KeyOptionalText:
		text, title = branch.CustomAlerts.For(gate.DecisionOptional), key == KeyOptionalTitle
	case KeyMaintenanceTitle, KeyMaintenanceText:
		text, title = branch.CustomAlerts.For(gate.DecisionMaintenance), key == KeyMaintenanceTitle
	default:
		return "", false
	}
	if text == nil {
		return "", false
	}
	if title && text.Title != "" {
		return text.Title, true
	}
	if !title && text.Text != "" {
		return text.Text, true
	}
	return "", false
}
