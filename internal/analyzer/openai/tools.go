package openai

import (
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"

	"reportingest/internal/domain"
)

const systemPrompt = `Sei un assistente che legge fotografie di report di sale giochi e punti vendita.
Per ogni report presente nell'immagine chiama la funzione corrispondente con i dati estratti.
Usa il formato AAAA-MM-GG per le date e HH:MM per gli orari.
Gli importi vanno restituiti come numeri, con il punto come separatore decimale.
Se un dato non è leggibile omettilo. Se l'immagine non contiene un report noto non chiamare alcuna funzione.`

var vltItemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":          map[string]any{"type": "string", "description": "Codice della macchina"},
		"bet":         map[string]any{"type": "number"},
		"win":         map[string]any{"type": "number"},
		"totalNetWin": map[string]any{"type": "number", "description": "Incasso netto della macchina"},
	},
}

func reportTools() []openai.ChatCompletionToolUnionParam {
	return []openai.ChatCompletionToolUnionParam{
		openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        string(domain.ReportTypeChiusuraPOS),
			Description: openai.String("Scontrino di chiusura giornaliera del POS"),
			Parameters: shared.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"data":        map[string]any{"type": "string"},
					"ora":         map[string]any{"type": "string"},
					"totale":      map[string]any{"type": "number"},
					"nomeAzienda": map[string]any{"type": "string"},
				},
				"required": []string{"totale"},
			},
		}),
		openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        string(domain.ReportTypeDailySpielo),
			Description: openai.String("Report giornaliero Spielo con le righe delle VLT"),
			Parameters: shared.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"data":        map[string]any{"type": "string"},
					"totale":      map[string]any{"type": "number"},
					"nomeAzienda": map[string]any{"type": "string"},
					"vlt":         map[string]any{"type": "array", "items": vltItemSchema},
				},
			},
		}),
		openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        string(domain.ReportTypeNovolineRange),
			Description: openai.String("Report Novoline su un intervallo di date"),
			Parameters: shared.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"from": map[string]any{"type": "string"},
					"to":   map[string]any{"type": "string"},
					"vlt":  map[string]any{"type": "array", "items": vltItemSchema},
				},
			},
		}),
	}
}
