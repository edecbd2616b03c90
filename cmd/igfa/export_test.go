package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/Zuo-Peng/igfa/internal/analyze"
	"github.com/Zuo-Peng/igfa/internal/config"
	"github.com/Zuo-Peng/igfa/internal/index"
	"github.com/Zuo-Peng/igfa/internal/search"
)

func TestExportPath(t *testing.T) {
	tests := []struct {
		name    string
		export  string
		args    []string
		want    string
		wantErr bool
	}{
		{"argument wins", "/cfg/export.zip", []string{"/tmp/a.zip"}, "/tmp/a.zip", false},
		{"config fallback", "/cfg/export.zip", nil, "/cfg/export.zip", false},
		{"nothing given", "", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Analysis.Export = tt.export
			got, err := exportPath(cfg, tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("exportPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("exportPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindContact(t *testing.T) {
	db, _, err := index.Build(&analyze.Report{
		Contacts: []analyze.ContactRow{
			{Name: "Anna", MessageCount: 90, AvgReply: 10},
			{Name: "Ann", MessageCount: 70, AvgReply: 20},
			{Name: "Jenn", MessageCount: 60, AvgReply: 30},
		},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer db.Close()
	s := &exportSession{db: db}

	tests := []struct {
		query   string
		want    string
		wantErr string
	}{
		{"ann", "Ann", ""},
		{"ANNA", "Anna", ""},
		{"enn", "Jenn", ""},
		{"nn", "", "matches 3 contacts"},
		{"zed", "", "contact not found"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := findContact(s, tt.query)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("findContact() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("findContact() error = %v", err)
			}
			if got.Name != tt.want {
				t.Errorf("findContact() = %q, want %q", got.Name, tt.want)
			}
		})
	}
}

func TestFindContact_NotFoundIsSentinel(t *testing.T) {
	db, _, err := index.Build(&analyze.Report{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer db.Close()

	_, err = findContact(&exportSession{db: db}, "anyone")
	if !errors.Is(err, search.ErrContactNotFound) {
		t.Errorf("findContact() error = %v, want ErrContactNotFound", err)
	}
}
