package locale

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/o1chat/internal/errs"
)

func TestTablesComplete(t *testing.T) {
	t.Parallel()
	for key := range tables["en"] {
		for _, lang := range Languages {
			_, ok := tables[lang][key]
			require.True(t, ok, "missing %s in %s", key, lang)
		}
	}
}

func TestT_Fallback(t *testing.T) {
	t.Parallel()
	require.Equal(t, "Вход", T("ru", Login))
	require.Equal(t, "Login", T("de", Login))
	require.Equal(t, "nope", T("en", Key("nope")))
	require.Contains(t, T("ru", SubscriptionEnded), "шутка")
}

func TestToggle(t *testing.T) {
	t.Parallel()
	require.Equal(t, "ru", Toggle("en"))
	require.Equal(t, "en", Toggle("ru"))
	require.Equal(t, "en", Toggle("xx"))
}

func TestForError(t *testing.T) {
	t.Parallel()
	require.Equal(t, FailedConnect, ForError(fmt.Errorf("%w: %w", errs.ErrRegistrationFailed, errs.ErrAllServersFailed)))
	require.Equal(t, Error, ForError(errors.New("other")))
}
