// Package normalizer turns tool calls into the canonical report documents that are
// persisted for each recognized report type.
package normalizer

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/spf13/cast"

	"reportingest/internal/domain"
)

// Source identifies the image a tool call was extracted from.
type Source struct {
	ImagePath      string
	ImageURL       string
	ConversationID string
}

type builder func(args map[string]any, raw json.RawMessage) domain.ReportFields

var builders = map[domain.ReportType]builder{
	domain.ReportTypeChiusuraPOS:   buildChiusuraPOS,
	domain.ReportTypeDailySpielo:   buildDailySpielo,
	domain.ReportTypeNovolineRange: buildNovolineRange,
}

// Normalize builds the document for one tool call. Unknown names keep their raw
// arguments so nothing the API returned is dropped.
func Normalize(call domain.ToolCall, src Source) *domain.ReportDocument {
	t := domain.ReportType(call.Name)
	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}

	build, ok := builders[t]
	if !ok {
		build = buildUnknown
	}

	return &domain.ReportDocument{
		Type:           t,
		ImagePath:      src.ImagePath,
		ImageURL:       src.ImageURL,
		ConversationID: optional(src.ConversationID),
		CallID:         optional(call.CallID),
		Fields:         build(args, rawArguments(call, args)),
	}
}

func buildChiusuraPOS(args map[string]any, raw json.RawMessage) domain.ReportFields {
	return &domain.ChiusuraPOSFields{
		Data:        stringField(args, "data"),
		Ora:         stringField(args, "ora"),
		Totale:      numberField(args, "totale"),
		NomeAzienda: stringField(args, "nomeAzienda"),
		RawArgs:     raw,
	}
}

func buildDailySpielo(args map[string]any, raw json.RawMessage) domain.ReportFields {
	return &domain.DailySpieloFields{
		Data:        stringField(args, "data"),
		Totale:      numberField(args, "totale"),
		NomeAzienda: stringField(args, "nomeAzienda"),
		VLT:         vltField(args),
		RawArgs:     raw,
	}
}

// buildNovolineRange derives data from the range start and totale from the rows;
// any totale sent by the API is ignored.
func buildNovolineRange(args map[string]any, raw json.RawMessage) domain.ReportFields {
	from := stringField(args, "from")
	data := from
	if data == nil {
		data = stringField(args, "date")
	}
	vlt := vltField(args)

	return &domain.NovolineRangeFields{
		Data:    data,
		From:    from,
		To:      stringField(args, "to"),
		Totale:  SumNetWin(vlt),
		VLT:     vlt,
		RawArgs: raw,
	}
}

func buildUnknown(_ map[string]any, raw json.RawMessage) domain.ReportFields {
	return &domain.UnknownFields{RawArgs: raw}
}

// rawArguments prefers the payload as received and re-encodes the decoded
// arguments only when the call carried none.
func rawArguments(call domain.ToolCall, args map[string]any) json.RawMessage {
	if len(call.RawArguments) > 0 {
		return call.RawArguments
	}
	b, err := json.Marshal(args)
	if err != nil {
		return nil
	}
	return b
}

// SumNetWin adds totalNetWin across rows, skipping rows where it is absent or
// not an amount.
func SumNetWin(rows []domain.VLTRecord) float64 {
	var sum float64
	for _, row := range rows {
		if n, ok := ParseAmount(row["totalNetWin"]); ok {
			sum += n
		}
	}
	return sum
}

func stringField(args map[string]any, key string) *string {
	v, ok := args[key]
	if !ok || v == nil {
		return nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// numberField is 0 when key is missing or holds no readable amount. The value as
// sent is still kept in rawArgs.
func numberField(args map[string]any, key string) float64 {
	n, _ := ParseAmount(args[key])
	return n
}

// ParseAmount reads a JSON number or an amount string such as "1.234,56",
// "€ 100,00" or "1,234.56". A lone comma after any dots is the decimal
// separator; other separators group thousands.
func ParseAmount(v any) (float64, bool) {
	switch tv := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		s := cleanAmount(tv)
		if s == "" {
			return 0, false
		}
		v = s
	}
	n, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func cleanAmount(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\'' {
			return -1
		}
		return r
	}, s)
	first := strings.IndexFunc(s, unicode.IsDigit)
	if first < 0 {
		return ""
	}
	neg := strings.Contains(s[:first], "-")
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.' && r != ','
	})
	s = strings.TrimRightFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })

	switch commas := strings.Count(s, ","); {
	case commas == 1 && strings.LastIndex(s, ",") > strings.LastIndex(s, "."):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case commas > 0:
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	if neg {
		s = "-" + s
	}
	return s
}

func vltField(args map[string]any) []domain.VLTRecord {
	rows := []domain.VLTRecord{}
	list, ok := args["vlt"].([]any)
	if !ok {
		return rows
	}
	for _, item := range list {
		if m, isMap := item.(map[string]any); isMap {
			rows = append(rows, domain.VLTRecord(m))
		}
	}
	return rows
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
