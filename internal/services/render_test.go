package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]string
		want     string
	}{
		{
			name:     "replaces known placeholders",
			template: "Your {{bundle}} order is ready, {{name}}",
			vars:     map[string]string{"bundle": "5GB", "name": "Kofi"},
			want:     "Your 5GB order is ready, Kofi",
		},
		{
			name:     "keeps unknown placeholders",
			template: "Hello {{missing}}",
			vars:     map[string]string{"bundle": "5GB"},
			want:     "Hello {{missing}}",
		},
		{
			name:     "tolerates spaces inside braces",
			template: "{{ bundle }} sent",
			vars:     map[string]string{"bundle": "5GB"},
			want:     "5GB sent",
		},
		{
			name:     "empty template",
			template: "",
			vars:     map[string]string{"bundle": "5GB"},
			want:     "",
		},
		{
			name:     "no vars leaves template alone",
			template: "static {{x}}",
			vars:     nil,
			want:     "static {{x}}",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Render(tc.template, tc.vars))
		})
	}
}
