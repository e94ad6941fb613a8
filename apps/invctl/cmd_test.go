package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/kymanga/vifaa/core"
	"github.com/kymanga/vifaa/core/inventory"
	logsvc "github.com/kymanga/vifaa/services/logger"
	notifsvc "github.com/kymanga/vifaa/services/notifier"
	dummyapi "github.com/kymanga/vifaa/storage/apiclient/dummy"
	testutil "github.com/kymanga/vifaa/tests"
)

type seeded struct {
	api      inventory.API
	db       *dummyapi.DB
	desk     inventory.Item
	laptop   inventory.Item
	category inventory.Category
}

func seedBackend(t *testing.T, perm inventory.PermissionContext) *seeded {
	db, api := testutil.OpenAPI(t)
	db.SetPermissions(perm)

	furniture := db.AddCategory("Furniture")
	electronics := db.AddCategory("Electronics")
	school := db.AddLocation("Mwangaza Primary", inventory.KindSchool)

	return &seeded{
		api:      api,
		db:       db,
		desk:     testutil.CreateItem(t, db, "Teacher desk", furniture.ID, inventory.KindSchool, school.ID, inventory.StatusAvailable, 120),
		laptop:   testutil.CreateItem(t, db, "Laptop", electronics.ID, inventory.KindSchool, school.ID, inventory.StatusAssigned, 600),
		category: furniture,
	}
}

func newTestCLI(api inventory.API) (*commandLine, *bytes.Buffer) {
	var out bytes.Buffer
	discard := log.New(io.Discard, "", 0)
	return &commandLine{
		conf:     &core.Config{},
		out:      &out,
		notifier: notifsvc.NewConsoleNotifier(discard),
		logger:   logsvc.NewStdLogger(discard),
		api:      api,
	}, &out
}

func Test_CLI_run(t *testing.T) {
	backend := seedBackend(t, testutil.AdminContext())
	tmp := t.TempDir()
	exportPath := filepath.Join(tmp, "report.csv")
	certPath := filepath.Join(tmp, "cert.txt")

	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantOut  []string
		skipOut  []string
		wantFile string
	}{
		{
			name:    "no args shows usage",
			args:    []string{"invctl"},
			wantErr: errHelp.Error(),
			wantOut: []string{"Usage: invctl"},
		},
		{
			name:    "unknown command shows usage",
			args:    []string{"invctl", "frobnicate"},
			wantErr: errHelp.Error(),
			wantOut: []string{"Usage: invctl"},
		},
		{
			name:    "list",
			args:    []string{"invctl", "list"},
			wantOut: []string{"Teacher desk", "Laptop", "2 item(s)", "720.00"},
		},
		{
			name:    "list with search",
			args:    []string{"invctl", "list", "-search", "desk"},
			wantOut: []string{"Teacher desk", "1 item(s)", "120.00"},
			skipOut: []string{"Laptop"},
		},
		{
			name:    "list with status filter",
			args:    []string{"invctl", "list", "-status", "assigned"},
			wantOut: []string{"Laptop"},
			skipOut: []string{"Teacher desk"},
		},
		{
			name:    "list rejects bad status",
			args:    []string{"invctl", "list", "-status", "broken"},
			wantErr: "Field validation",
		},
		{
			name:    "list rejects bad location id",
			args:    []string{"invctl", "list", "-location", "not-a-uuid"},
			wantErr: "parsing -location",
		},
		{
			name:    "summary",
			args:    []string{"invctl", "summary"},
			wantOut: []string{"2 item(s), total value 720.00", "available", "assigned", "Furniture", "Electronics"},
		},
		{
			name:     "export",
			args:     []string{"invctl", "export", "-out", exportPath},
			wantOut:  []string{"report written to " + exportPath},
			wantFile: exportPath,
		},
		{
			name:     "certificate",
			args:     []string{"invctl", "certificate", "-id", backend.desk.ID.String(), "-out", certPath},
			wantOut:  []string{"certificate written to " + certPath},
			wantFile: certPath,
		},
		{
			name:    "certificate requires id",
			args:    []string{"invctl", "certificate"},
			wantErr: errHelp.Error(),
		},
		{
			name:    "certificate rejects bad id",
			args:    []string{"invctl", "certificate", "-id", "nope"},
			wantErr: "parsing -id",
		},
		{
			name:    "delete requires id",
			args:    []string{"invctl", "delete"},
			wantErr: errHelp.Error(),
		},
		{
			name:    "delete unknown item",
			args:    []string{"invctl", "delete", "-id", uuid.New().String()},
			wantErr: "not found",
		},
		{
			name:    "delete assigned item fails",
			args:    []string{"invctl", "delete", "-id", backend.laptop.ID.String()},
			wantErr: "delete failed",
		},
		{
			name:    "delete",
			args:    []string{"invctl", "delete", "-id", backend.desk.ID.String()},
			wantOut: []string{"item " + backend.desk.ID.String() + " deleted"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out := newTestCLI(backend.api)
			err := cli.run(tt.args)
			if tt.wantErr != "" {
				if assert.Error(t, err) {
					assert.Contains(t, err.Error(), tt.wantErr)
				}
			} else {
				assert.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
			for _, skip := range tt.skipOut {
				assert.NotContains(t, out.String(), skip)
			}
			if tt.wantFile != "" {
				doc, err := os.ReadFile(tt.wantFile)
				assert.NoError(t, err)
				assert.NotEmpty(t, doc)
			}
		})
	}
}

func Test_CLI_delete_refusedWithoutPermission(t *testing.T) {
	perm := testutil.AdminContext()
	perm.IsAdmin = false
	perm.CanDelete = false
	backend := seedBackend(t, perm)

	cli, _ := newTestCLI(backend.api)
	err := cli.run([]string{"invctl", "delete", "-id", backend.desk.ID.String()})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "delete refused")
	}

	// the item is still there
	items, apiErr := backend.api.FetchItems(context.Background(), inventory.FilterState{})
	assert.NoError(t, apiErr)
	assert.Len(t, items, 2)
}

func Test_CLI_demoMode(t *testing.T) {
	cli, out := newTestCLI(nil)
	err := cli.run([]string{"invctl", "-demo", "list"})
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "Teacher desk")
	assert.Contains(t, out.String(), "5 item(s)")
}

func Test_CLI_controller_promptsForToken(t *testing.T) {
	origReadPassword := readPasswordFunc
	defer func() { readPasswordFunc = origReadPassword }()

	cli, out := newTestCLI(nil)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("sekret"), nil }
	ctrl, err := cli.controller()
	assert.NoError(t, err)
	assert.NotNil(t, ctrl)
	assert.Equal(t, "sekret", cli.conf.API.Token)
	assert.Contains(t, out.String(), "Enter API token:")

	// an empty token is refused
	cli2, _ := newTestCLI(nil)
	readPasswordFunc = func(fd int) ([]byte, error) { return nil, nil }
	_, err = cli2.controller()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "an API token is required")
	}
}
