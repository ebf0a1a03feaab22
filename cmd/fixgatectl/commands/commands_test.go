package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/brightwire/fixgate/pkg/directory"
	"github.com/brightwire/fixgate/pkg/identity"
)

func writeTestConfig(t *testing.T, directoryPath string) string {
	t.Helper()
	configContents := `
logging:
  level: ERROR
  format: text
  output: stderr
directory:
  path: ` + directoryPath + `
  sector_size: 4096
  capacity: 65536
  codec: binary
metrics:
  enabled: false
control_plane:
  enabled: false
`
	path := filepath.Join(t.TempDir(), "fixgate.yaml")
	if err := os.WriteFile(path, []byte(configContents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestInspect_JSONListsAssignedSessions(t *testing.T) {
	dir := t.TempDir()
	configPath = writeTestConfig(t, filepath.Join(dir, "directory.dat"))

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	engine, err := openEngine(cfg)
	if err != nil {
		t.Fatalf("openEngine() error = %v", err)
	}
	if _, err := engine.OnLogon(identity.Key{SenderCompID: "BANKA", TargetCompID: "BANKB"}, "FIX.4.2"); err != nil {
		t.Fatalf("OnLogon() error = %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	inspectJSON = true
	defer func() { inspectJSON = false }()

	var out bytes.Buffer
	inspectCmd.SetOut(&out)
	if err := runInspect(inspectCmd, nil); err != nil {
		t.Fatalf("runInspect() error = %v", err)
	}

	var sessions []directory.SessionInfo
	if err := json.Unmarshal(out.Bytes(), &sessions); err != nil {
		t.Fatalf("unmarshal output: %v, output = %s", err, out.String())
	}
	if len(sessions) != 1 || sessions[0].SessionID != directory.LowestValidSessionID {
		t.Fatalf("sessions = %+v, want one session with id %d", sessions, directory.LowestValidSessionID)
	}
}

func TestReset_ClearsAssignedSessions(t *testing.T) {
	dir := t.TempDir()
	configPath = writeTestConfig(t, filepath.Join(dir, "directory.dat"))

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	engine, err := openEngine(cfg)
	if err != nil {
		t.Fatalf("openEngine() error = %v", err)
	}
	if _, err := engine.OnLogon(identity.Key{SenderCompID: "BANKA", TargetCompID: "BANKB"}, "FIX.4.2"); err != nil {
		t.Fatalf("OnLogon() error = %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	resetBackupDestination = ""
	var out bytes.Buffer
	resetCmd.SetOut(&out)
	if err := runReset(resetCmd, nil); err != nil {
		t.Fatalf("runReset() error = %v", err)
	}

	cfg, err = loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() (reopen) error = %v", err)
	}
	engine, err = openEngine(cfg)
	if err != nil {
		t.Fatalf("openEngine() (reopen) error = %v", err)
	}
	defer engine.Close()
	if sessions := engine.AllSessions(); len(sessions) != 0 {
		t.Fatalf("AllSessions() after reset = %+v, want empty", sessions)
	}
}
