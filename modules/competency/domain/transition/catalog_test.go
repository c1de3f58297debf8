package transition

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalog_EveryKindHasDescription(t *testing.T) {
	for _, kind := range Kinds() {
		d, ok := Get(kind)
		require.True(t, ok)
		require.NotEmpty(t, d.Description, "kind %s", kind)
	}
}

func TestCatalog_HomologationsAreSilent(t *testing.T) {
	for _, kind := range []Kind{CadastroHomologated, RevisionCadastroHomologated, MapHomologated} {
		require.False(t, GeneratesAlert(kind), "kind %s", kind)
		require.False(t, SendsEmail(kind), "kind %s", kind)
	}
}

func TestCatalog_CadastroSubmittedNotifies(t *testing.T) {
	require.True(t, GeneratesAlert(CadastroSubmitted))
	require.True(t, SendsEmail(CadastroSubmitted))
	require.True(t, NotifiesAncestors(CadastroSubmitted))
}

func TestFormatAlert_SubstitutesAcronym(t *testing.T) {
	got := FormatAlert(CadastroSubmitted, "ABC")
	require.Contains(t, got, "ABC")
	require.NotContains(t, got, "%s")
	require.NotContains(t, got, "%!")
}

func TestFormatAlert_SilentKindReturnsEmpty(t *testing.T) {
	require.Empty(t, FormatAlert(CadastroHomologated, "ABC"))
}

func TestCatalog_AlertTemplatesHaveExactlyOnePlaceholder(t *testing.T) {
	for _, kind := range Kinds() {
		d, _ := Get(kind)
		if d.AlertTemplate == "" {
			continue
		}
		require.Equal(t, 1, strings.Count(d.AlertTemplate, "%s"), "kind %s", kind)
	}
}

func TestGet_UnknownKind(t *testing.T) {
	_, ok := Get(Kind("NOPE"))
	require.False(t, ok)
	require.Empty(t, Kind("NOPE").Description())
}
