package validation

import (
	"testing"

	"github.com/veranemoloko/downloadtask/internal/domain"
)

func TestValidateURLs(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantErr bool
	}{
		{
			name:    "valid single URL",
			input:   []string{"https://example.com"},
			wantErr: false,
		},
		{
			name:    "valid multiple URLs",
			input:   []string{"https://example.com", "http://golang.org"},
			wantErr: false,
		},
		{
			name:    "invalid scheme",
			input:   []string{"ftp://example.com"},
			wantErr: true,
		},
		{
			name:    "missing host",
			input:   []string{"https:///path"},
			wantErr: true,
		},
		{
			name:    "localhost not allowed",
			input:   []string{"http://localhost:8080"},
			wantErr: true,
		},
		{
			name:    "private IP not allowed",
			input:   []string{"http://192.168.1.10"},
			wantErr: true,
		},
		{
			name:    "loopback IP not allowed",
			input:   []string{"https://127.0.0.1"},
			wantErr: true,
		},
		{
			name:    "metadata endpoint not allowed",
			input:   []string{"http://169.254.169.254/latest"},
			wantErr: true,
		},
		{
			name:    "empty slice (no URLs)",
			input:   []string{},
			wantErr: false,
		},
	}

	v := New(false, 10)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateURLs(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateURLs_AllowPrivateHosts(t *testing.T) {
	v := New(true, 10)
	if err := v.ValidateURLs([]string{"http://127.0.0.1:8080/file"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.ValidateURLs([]string{"ftp://127.0.0.1/file"}); err == nil {
		t.Errorf("expected scheme to be rejected even with private hosts allowed")
	}
}

func TestValidateCreateTask(t *testing.T) {
	tests := []struct {
		name    string
		req     domain.CreateTaskRequest
		wantErr bool
	}{
		{
			name: "valid with file name",
			req: domain.CreateTaskRequest{Downloads: []domain.DownloadSpec{
				{URL: "https://example.com/a.zip", FileName: "a.zip"},
			}},
		},
		{
			name: "valid without file name",
			req: domain.CreateTaskRequest{Downloads: []domain.DownloadSpec{
				{URL: "https://example.com/a.zip"},
			}},
		},
		{
			name:    "no downloads",
			req:     domain.CreateTaskRequest{},
			wantErr: true,
		},
		{
			name: "path traversal in file name",
			req: domain.CreateTaskRequest{Downloads: []domain.DownloadSpec{
				{URL: "https://example.com/a.zip", FileName: "../etc/passwd"},
			}},
			wantErr: true,
		},
		{
			name: "dot dot file name",
			req: domain.CreateTaskRequest{Downloads: []domain.DownloadSpec{
				{URL: "https://example.com/a.zip", FileName: ".."},
			}},
			wantErr: true,
		},
		{
			name: "unsafe url",
			req: domain.CreateTaskRequest{Downloads: []domain.DownloadSpec{
				{URL: "http://10.0.0.1/a.zip"},
			}},
			wantErr: true,
		},
		{
			name: "too many downloads",
			req: domain.CreateTaskRequest{Downloads: []domain.DownloadSpec{
				{URL: "https://example.com/1"},
				{URL: "https://example.com/2"},
				{URL: "https://example.com/3"},
			}},
			wantErr: true,
		},
	}

	v := New(false, 2)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreateTask(&tt.req)
			if tt.wantErr && err == nil {
				t.Errorf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
