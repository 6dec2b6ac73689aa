package azcli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractErrorMessage_Priority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "json error message wins over ERROR line",
			text: "ERROR: Y\nsome context {\"error\":{\"message\":\"X\"}} trailing",
			want: "X",
		},
		{
			name: "json top-level message",
			text: "noise\n{\"message\": \"quota exceeded\"}",
			want: "quota exceeded",
		},
		{
			name: "json without message does not stop the scan",
			text: "{\"status\": \"Failed\"}\nERROR: fallback wins",
			want: "fallback wins",
		},
		{
			name: "error prefix line",
			text: "WARNING: something\nERROR: resource group not found",
			want: "resource group not found",
		},
		{
			name: "error prefix with empty remainder returns whole line",
			text: "ERROR:",
			want: "ERROR:",
		},
		{
			name: "tool error line takes text after last colon",
			text: "az: error: unrecognized arguments: --frobnicate",
			want: "--frobnicate",
		},
		{
			name: "code and message pair",
			text: "Code: InvalidTemplate\nsome noise\nMessage: the template is malformed",
			want: "InvalidTemplate: the template is malformed",
		},
		{
			name: "first non-warning line before traceback",
			text: "WARNING: ignore me\nconnection reset by peer\nTraceback (most recent call last):\n  File ...",
			want: "connection reset by peer",
		},
		{
			name: "traceback before any usable line yields empty",
			text: "\nTraceback (most recent call last):\n  File \"azure/cli.py\"\nKeyError: 'x'",
			want: "",
		},
		{
			name: "empty input",
			text: "",
			want: "",
		},
		{
			name: "whitespace only",
			text: "  \n\t \n",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ExtractErrorMessage(tt.text))
		})
	}
}

func TestExtractErrorMessage_StripsANSI(t *testing.T) {
	t.Parallel()
	colored := "\x1b[31mERROR: Y\x1b[0m"
	require.Equal(t, "Y", ExtractErrorMessage(colored))
}

func TestStripANSI(t *testing.T) {
	t.Parallel()
	require.Equal(t, "plain", StripANSI("\x1b[1;32mplain\x1b[0m"))
	require.Equal(t, "untouched", StripANSI("untouched"))
}
