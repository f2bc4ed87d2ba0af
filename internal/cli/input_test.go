package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/acroserve/pkg/dictionary"
	"github.com/bastiangx/acroserve/pkg/manager"
	"github.com/bastiangx/acroserve/pkg/scanner"
)

func TestHighlight(t *testing.T) {
	text := "gNB to AMF"
	matches := []scanner.Match{
		{Start: 0, End: 3, Key: "gNB", MatchedText: "gNB"},
		{Start: 7, End: 10, Key: "AMF", MatchedText: "AMF"},
	}
	plain := lipgloss.NewStyle()
	assert.Equal(t, text, Highlight(text, matches, plain))
	assert.Equal(t, "", Highlight("", nil, plain))
	assert.Equal(t, "no matches", Highlight("no matches", nil, plain))
}

func TestConsoleCommands(t *testing.T) {
	mgr, err := manager.New(dictionary.MustBase(), manager.WithLogger(log.New(io.Discard)))
	require.NoError(t, err)

	input := strings.Join([]string{
		"Our gNB talks to the AMF",
		"?urlcc",
		"=nwdaf",
		"@5G",
		"#secure networks",
		"nothing to see",
		"",
	}, "\n")
	var out bytes.Buffer
	h := NewInputHandlerWithIO(mgr, 3, strings.NewReader(input), &out)
	require.NoError(t, h.Start())

	got := out.String()
	amf, _ := mgr.Current().Lookup("AMF")
	nwdaf, _ := mgr.Current().Lookup("NWDAF")
	assert.Contains(t, got, amf.Definition)
	assert.Contains(t, got, "URLLC")
	assert.Contains(t, got, nwdaf.Definition)
	assert.Contains(t, got, "6G")
	assert.Contains(t, got, "Suggested: SSL, TLS, IPSec")
	assert.Contains(t, got, "No acronyms found")
	assert.Equal(t, 6, h.requestCount)
}
