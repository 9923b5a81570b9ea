package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asimihsan/manup/internal/host/mock"
	"github.com/asimihsan/manup/pkg/gate"
)

func TestSelect(t *testing.T) {
	doc := gate.PolicyDocument{
		"ios":     {Minimum: "1.0.0", Latest: "2.4.5", Enabled: true, URL: "http://example.com"},
		"android": {Minimum: "4.0.1", Latest: "6.2.1", Enabled: true, URL: "http://example.com"},
		"windows": {Minimum: "1.0.0", Latest: "1.0.1", Enabled: false, URL: "http://example.com"},
	}

	tests := []struct {
		platform string
		want     *gate.PolicyBranch
	}{
		{gate.PlatformIOS, doc["ios"]},
		{gate.PlatformAndroid, doc["android"]},
		{gate.PlatformDesktop, doc["windows"]},
	}

	for _, tt := range tests {
		t.Run(tt.platform, func(t *testing.T) {
			branch, err := Select(doc, mock.NewPlatform(tt.platform))
			require.NoError(t, err)
			assert.Equal(t, *tt.want, branch)
		})
	}
}

func TestSelectDesktopAlias(t *testing.T) {
	doc := gate.PolicyDocument{"desktop": {Minimum: "3.0.0", Latest: "3.0.0", Enabled: true}}

	branch, err := Select(doc, mock.NewPlatform(gate.PlatformDesktop))
	require.NoError(t, err)
	assert.Equal(t, "3.0.0", branch.Minimum)
}

func TestSelectErrors(t *testing.T) {
	doc := gate.PolicyDocument{"ios": {Minimum: "1.0.0", Latest: "1.0.0", Enabled: true}}

	t.Run("Unknown platform", func(t *testing.T) {
		_, err := Select(doc, mock.NewPlatform("blackberry"))
		assert.ErrorIs(t, err, gate.ErrUnknownPlatform)

		_, err = Select(doc, nil)
		assert.ErrorIs(t, err, gate.ErrUnknownPlatform)
	})

	t.Run("Missing document", func(t *testing.T) {
		_, err := Select(nil, mock.NewPlatform(gate.PlatformIOS))
		assert.ErrorIs(t, err, gate.ErrMissingMetadata)
	})

	t.Run("Platform absent from document", func(t *testing.T) {
		_, err := Select(doc, mock.NewPlatform(gate.PlatformAndroid))
		assert.ErrorIs(t, err, gate.ErrMissingMetadata)

		_, err = Select(gate.PolicyDocument{"android": nil}, mock.NewPlatform(gate.PlatformAndroid))
		assert.ErrorIs(t, err, gate.ErrMissingMetadata)
	})
}

func TestClassify(t *testing.T) {
	name, err := Classify(mock.NewPlatform(gate.PlatformAndroid))
	require.NoError(t, err)
	assert.Equal(t, gate.PlatformAndroid, name)

	_, err = Classify(mock.NewPlatform("tizen"))
	assert.ErrorIs(t, err, gate.ErrUnknownPlatform)
}
