package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordgate/recordgate/pkg/backend"
)

func TestParseFieldSpec(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    backend.FieldMeta
		wantErr bool
	}{
		{
			name: "simple text field",
			spec: "email:text",
			want: backend.FieldMeta{Name: "email", ResultType: "text", MaxRepeat: 1},
		},
		{
			name: "repeating field",
			spec: "phone:text:3",
			want: backend.FieldMeta{Name: "phone", ResultType: "text", MaxRepeat: 3},
		},
		{
			name: "container field",
			spec: "photo:container",
			want: backend.FieldMeta{Name: "photo", ResultType: "container", MaxRepeat: 1},
		},
		{
			name:    "missing type",
			spec:    "email",
			wantErr: true,
		},
		{
			name:    "unknown type",
			spec:    "email:blob",
			wantErr: true,
		},
		{
			name:    "zero maxRepeat",
			spec:    "phone:text:0",
			wantErr: true,
		},
		{
			name:    "empty name",
			spec:    ":text",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFieldSpec(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
