package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wordladder/internal/database"
	"wordladder/internal/logging"
	"wordladder/internal/models"
	"wordladder/internal/repository"
	"wordladder/internal/security"
	"wordladder/internal/service"
)

const cliSecret = "cli-test-secret"

const sampleSeed = `
[[words]]
key = "sun"
text = "sun"
sound_group = "INITIAL"
stage = 1

[[words]]
key = "shine"
text = "shine"
sound_group = "diphthong"
stage = 1

[[words]]
key = "sunshine"
text = "sunshine"
meaning = "light from the sun"
stage = 2

[[words]]
key = "old"
text = "olde"
active = false

[[components]]
parent = "sunshine"
component = "sun"
position = 1

[[components]]
parent = "sunshine"
component = "shine"
position = 2

[[age_bands]]
key = "4-5"
label = "4 to 5 years"
min_months = 48
max_months = 71

[[screening_sets]]
name = "Default 4-5"
age_band = "4-5"
words = ["sun", "shine"]
`

type cliTestEnv struct {
	configPath string
	dbPath     string
	dir        string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	dir := t.TempDir()
	testChdir(t, dir)
	for _, key := range []string{"CONFIG_FILE", "DB_TYPE", "DB_PATH", "DATABASE_URL", "TOKEN_SECRET", "LOG_FORMAT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	dbPath := filepath.Join(dir, "cli.db")
	configPath := filepath.Join(dir, "wordladder.toml")
	content := fmt.Sprintf("database_path = %q\ntoken_secret = %q\nlog_level = \"error\"\n", dbPath, cliSecret)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{configPath: configPath, dbPath: dbPath, dir: dir}
}

func (e *cliTestEnv) writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, "seed.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestMigrate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	requireContains(t, out, "migration version 3")
}

func TestSeedAndInspectWords(t *testing.T) {
	env := setupCLITestEnv(t)
	seed := env.writeSeed(t, sampleSeed)

	out, _, err := runCLI(t, env, "seed", seed)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	requireContains(t, out, "Seeded 4 words, 2 components, 1 age bands, 1 screening sets (2 items)")

	out, _, err = runCLI(t, env, "words", "list")
	if err != nil {
		t.Fatalf("words list: %v", err)
	}
	requireContains(t, out, "sunshine")
	if strings.Contains(out, "olde") {
		t.Errorf("inactive word listed:\n%s", out)
	}

	out, _, err = runCLI(t, env, "words", "components", "3")
	if err != nil {
		t.Fatalf("words components: %v", err)
	}
	requireContains(t, out, "shine")
	if strings.Index(out, "sun ") > strings.Index(out, "shine") {
		t.Errorf("components out of position order:\n%s", out)
	}
}

func TestSeedRejectsUnknownReferences(t *testing.T) {
	tests := []struct {
		name    string
		seed    string
		wantErr string
	}{
		{
			name:    "unknown component word",
			seed:    "[[words]]\nkey = \"a\"\ntext = \"a\"\n\n[[components]]\nparent = \"a\"\ncomponent = \"b\"\nposition = 1\n",
			wantErr: `unknown word key "b"`,
		},
		{
			name:    "unknown age band",
			seed:    "[[screening_sets]]\nname = \"s\"\nage_band = \"missing\"\n",
			wantErr: `unknown age band "missing"`,
		},
		{
			name:    "bad sound group",
			seed:    "[[words]]\nkey = \"a\"\ntext = \"a\"\nsound_group = \"nasal\"\n",
			wantErr: "unknown sound group",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupCLITestEnv(t)
			_, _, err := runCLI(t, env, "seed", env.writeSeed(t, tt.seed))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("seed error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestWordsLinkRejectsCycle(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "seed", env.writeSeed(t, sampleSeed)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, _, err := runCLI(t, env, "words", "link", "--parent", "1", "--component", "3", "--position", "1")
	if err == nil || !strings.Contains(err.Error(), service.ErrCycle.Error()) {
		t.Errorf("link error = %v, want cycle", err)
	}

	out, _, err := runCLI(t, env, "words", "link", "--parent", "2", "--component", "1", "--position", "1")
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	requireContains(t, out, `Linked "sun" into word 2 at position 1`)
}

func TestReports(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "seed", env.writeSeed(t, sampleSeed)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, _, err := runCLI(t, env, "report", "recent", "--learner", "7")
	if err != nil {
		t.Fatalf("report recent: %v", err)
	}
	requireContains(t, out, "No missed words")

	recordSession(t, env.dbPath, 7, []bool{true, false, false})

	out, _, err = runCLI(t, env, "report", "recent", "--learner", "7", "--days", "7")
	if err != nil {
		t.Fatalf("report recent: %v", err)
	}
	requireContains(t, out, "learner 7, last 7 days")
	requireContains(t, out, "shine")

	out, _, err = runCLI(t, env, "report", "missed", "--centre", "3")
	if err != nil {
		t.Fatalf("report missed: %v", err)
	}
	requireContains(t, out, "sunshine")

	if _, _, err := runCLI(t, env, "report", "missed"); err == nil {
		t.Error("expected error without --learner or --centre")
	}
	if _, _, err := runCLI(t, env, "report", "missed", "--learner", "1", "--centre", "3"); err == nil {
		t.Error("expected error with both --learner and --centre")
	}
}

// recordSession runs a daily session for the learner at centre 3 and
// submits the given outcomes in position order.
func recordSession(t *testing.T, dbPath string, learnerID int64, outcomes []bool) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	sessions := repository.NewSessionRepository(db)
	engine := service.NewSessionService(db, sessions,
		repository.NewWordRepository(db),
		repository.NewScreeningRepository(db),
		service.NewMissedItemAnalyzer(sessions),
		logging.Discard(), 50)

	centre := int64(3)
	session, err := engine.CreateDailySession(ctx, models.Learner{ID: learnerID, CentreID: &centre}, len(outcomes), "")
	if err != nil {
		t.Fatalf("CreateDailySession() error = %v", err)
	}

	answers := make([]models.Answer, len(outcomes))
	for i, correct := range outcomes {
		answers[i] = models.Answer{Position: i + 1, IsCorrect: &correct}
	}
	if _, err := engine.Submit(ctx, session.ID, learnerID, answers); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
}

func TestTokenCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "token", "--learner", "12", "--centre", "4", "--role", "staff")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	identity, err := security.NewTokenVerifier(cliSecret).Verify(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if identity.LearnerID != 12 || identity.Role != security.RoleStaff || identity.CentreID == nil || *identity.CentreID != 4 {
		t.Errorf("identity = %+v", identity)
	}

	if _, _, err := runCLI(t, env, "token", "--learner", "12", "--role", "owner"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestExportRoundTrip(t *testing.T) {
	source := setupCLITestEnv(t)
	if _, _, err := runCLI(t, source, "seed", source.writeSeed(t, sampleSeed)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	exported := filepath.Join(source.dir, "out", "lexicon.toml")
	out, _, err := runCLI(t, source, "export", "--output", exported)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, out, "Exported 4 words and 1 screening sets")

	target := setupCLITestEnv(t)
	out, _, err = runCLI(t, target, "seed", exported)
	if err != nil {
		t.Fatalf("seed from export: %v", err)
	}
	requireContains(t, out, "Seeded 4 words, 2 components, 1 age bands, 1 screening sets (2 items)")

	out, _, err = runCLI(t, target, "words", "components", "3")
	if err != nil {
		t.Fatalf("words components: %v", err)
	}
	requireContains(t, out, "shine")
}

// testChdir changes the working directory for the duration of the test,
// restoring it on cleanup (stand-in for testing.T.Chdir on older toolchains).
func testChdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
