// Package notify reports ingestion outcomes back to the hub and, for failures,
// to operators by email. Every notifier is best-effort.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reportingest/internal/domain"
	"reportingest/internal/port"
)

// Message renders the Italian status text sent for an outcome.
func Message(o port.Outcome) string {
	switch o.Status {
	case port.OutcomeSaved:
		return fmt.Sprintf("Report salvato correttamente (%s): %s", joinTypes(o.ReportTypes), o.ImagePath)
	case port.OutcomeNoToolCalls:
		return fmt.Sprintf("Nessun report riconosciuto nell'immagine %s. Scansione salvata per verifica manuale.", o.ImagePath)
	case port.OutcomeAnalyzeFailed:
		return fmt.Sprintf("Errore durante l'analisi dell'immagine %s: %s", o.ImagePath, errText(o.Err))
	case port.OutcomePersistFailed:
		return fmt.Sprintf("Errore durante il salvataggio del report per %s: %s", o.ImagePath, errText(o.Err))
	default:
		return fmt.Sprintf("Elaborazione di %s terminata con stato %s", o.ImagePath, o.Status)
	}
}

func joinTypes(types []domain.ReportType) string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func errText(err error) string {
	if err == nil {
		return "errore sconosciuto"
	}
	return err.Error()
}

// Multi fans one outcome out to several notifiers. Every notifier is called;
// their errors are joined.
type Multi []port.Notifier

func (m Multi) Notify(ctx context.Context, o port.Outcome) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
