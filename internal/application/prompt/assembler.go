// Package prompt renders the system and user messages sent to a model.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/doeshing/termind/internal/domain"
)

// Input is everything a prompt may draw from.
type Input struct {
	// Request is the user's natural-language text (or the guess description).
	Request string
	// Primary is the guess intent; empty for generate.
	Primary  string
	History  string
	Metadata domain.Metadata
	Memory   []domain.MemoryMatch
}

// Payload is handed to a model adapter as-is.
type Payload struct {
	System string
	User   string
}

type templateData struct {
	Primary string
	System  string
	Path    string
	Files   string
	Git     string
	Docker  string
	GPU     string
	History string
	Samples []sample
}

type sample struct {
	Query    string
	Response string
	Distance string
	Date     string
}

var (
	commandsTemplate = template.Must(template.New("commands").Parse(commandsText))
	suggestTemplate  = template.Must(template.New("suggestions").Parse(suggestionsText))
)

// Commands builds the prompt that turns a request into shell commands.
func Commands(in Input) (Payload, error) {
	system, err := render(commandsTemplate, newTemplateData(in))
	if err != nil {
		return Payload{}, err
	}
	return Payload{System: system, User: strings.TrimSpace(in.Request)}, nil
}

// Suggestions builds the prompt that guesses the user's next command.
func Suggestions(in Input) (Payload, error) {
	system, err := render(suggestTemplate, newTemplateData(in))
	if err != nil {
		return Payload{}, err
	}
	return Payload{System: system, User: strings.TrimSpace(in.Request)}, nil
}

// Explain builds the prompt that describes what command does.
func Explain(command string) Payload {
	return Payload{System: explainText, User: strings.TrimSpace(command)}
}

func newTemplateData(in Input) templateData {
	data := templateData{
		Primary: strings.TrimSpace(in.Primary),
		System:  toJSON(in.Metadata.System),
		Path:    toJSON(in.Metadata.Path),
		Files:   toJSON(in.Metadata.Files),
		History: strings.TrimSpace(in.History),
	}
	if in.Metadata.Git.IsRepository() {
		data.Git = toJSON(in.Metadata.Git)
	}
	if in.Metadata.Docker != nil {
		data.Docker = toJSON(in.Metadata.Docker)
	}
	if in.Metadata.GPU != nil && in.Metadata.GPU.ModelName != "" {
		data.GPU = toJSON(in.Metadata.GPU)
	}
	for _, match := range in.Memory {
		data.Samples = append(data.Samples, sample{
			Query:    match.Record.Query,
			Response: match.Record.Response,
			Distance: fmt.Sprintf("%.4f", match.Distance),
			Date:     match.Record.CreatedAt.Local().Format(domain.HistoryDateLayout),
		})
	}
	return data
}

func toJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func render(tmpl *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}
