// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"errors"
	"strings"
	"text/template"

	"github.com/rowmill/rowmill/internal/mapper/functions"
)

// Mapper renders a set of named string templates against a table row.
// The transform processor uses it to derive new column values from existing ones.
type Mapper interface {
	// Apply renders every template against row and returns the rendered values
	// keyed by template name.
	Apply(row map[string]any) (output map[string]string, err error)
}

var _ Mapper = &internalMapper{}

// internalMapper is the default implementation of the Mapper interface.
type internalMapper struct {
	templates map[string]*template.Template
}

// New creates a new Mapper from a map of template name to template body.
// Template bodies use the Go text/template syntax with the row values as data
// and the functions registered in the functions package.
func New(templateBodies map[string]string) (Mapper, error) {
	var parsingErrs error
	tmpl := template.New("main").Funcs(functions.FuncMap())

	templates := make(map[string]*template.Template, len(templateBodies))
	for key, body := range templateBodies {
		parsed, err := tmpl.New(key).Parse(body)
		if err != nil {
			parsingErrs = errors.Join(parsingErrs, err)
			continue
		}

		templates[key] = parsed
	}

	if parsingErrs != nil {
		return nil, NewParsingError(parsingErrs)
	}

	return &internalMapper{
		templates: templates,
	}, nil
}

// Apply renders every template against row and returns the rendered values.
func (m *internalMapper) Apply(row map[string]any) (map[string]string, error) {
	output := make(map[string]string, len(m.templates))

	var executionErrs error
	for key, tmpl := range m.templates {
		builder := new(strings.Builder)
		if err := tmpl.Execute(builder, row); err != nil {
			executionErrs = errors.Join(executionErrs, err)
			continue
		}

		output[key] = builder.String()
	}

	if executionErrs != nil {
		return nil, NewExecutionError(executionErrs)
	}

	return output, nil
}
