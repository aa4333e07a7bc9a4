package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/ytsync/internal/models"
	"github.com/desertthunder/ytsync/internal/shared"
	tu "github.com/desertthunder/ytsync/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			source := &tu.MockSource{}
			dest := &tu.MockDest{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
				Source: source,
				Dest:   dest,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.source != source {
				t.Error("expected source to be set")
			}
			if runner.dest != dest {
				t.Error("expected dest to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		commands := runner.register()

		if len(commands) != 4 {
			t.Fatalf("expected 4 top-level commands, got %d", len(commands))
		}

		names := make(map[string]bool)
		for _, cmd := range commands {
			names[cmd.Name] = true
		}
		for _, want := range []string{"sync", "history", "cache", "setup"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("pretty output", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"count": 3}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "\"count\": 3") {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]int{}, false); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("writePlain failure", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

		if err := runner.writePlain("hello"); err == nil {
			t.Error("expected write error")
		}
	})

	t.Run("statusFromResult", func(t *testing.T) {
		t.Run("success", func(t *testing.T) {
			status := statusFromResult(&models.SyncResult{
				Success:     true,
				TracksAdded: 2,
				SourceCount: 10,
				DestCount:   10,
			})

			if status.Status != "success" || status.TracksAdded != 2 {
				t.Errorf("unexpected status %+v", status)
			}
			if status.LastError != nil {
				t.Errorf("expected nil last error, got %v", *status.LastError)
			}
		})

		t.Run("failure keeps last error", func(t *testing.T) {
			status := statusFromResult(&models.SyncResult{
				Success: false,
				Errors:  []string{"first", "second"},
			})

			if status.Status != "failed" {
				t.Errorf("expected failed, got %s", status.Status)
			}
			if status.LastError == nil || *status.LastError != "second" {
				t.Errorf("expected last error 'second', got %v", status.LastError)
			}
		})
	})
}

func TestSyncRunCommand(t *testing.T) {
	newSyncRunner := func(t *testing.T, source *tu.MockSource, dest *tu.MockDest) (*Runner, *bytes.Buffer) {
		t.Helper()

		dataDir := t.TempDir()
		config := shared.DefaultConfig()
		config.Sync.DataDir = dataDir
		config.Sync.SourcePlaylistID = "src"
		config.Sync.DestPlaylistID = "dst"
		config.Database.Path = filepath.Join(dataDir, "runs.db")

		output := &bytes.Buffer{}
		return NewRunner(RunnerOpts{
			Config: config,
			Source: source,
			Dest:   dest,
			Output: output,
		}), output
	}

	t.Run("runs end to end and writes status", func(t *testing.T) {
		source := &tu.MockSource{Tracks: []models.Track{
			{Title: "Song A", Artist: "Artist A", SpotifyID: "sp1"},
		}}
		dest := &tu.MockDest{Results: map[string][]models.SearchResult{
			"Song A": {{VideoID: "vid-a", Title: "Artist A - Song A (Official Audio)", Channel: "Artist A"}},
		}}

		runner, output := newSyncRunner(t, source, dest)

		app := syncCommand(runner)
		if err := app.Run(context.Background(), []string{"sync", "run"}); err != nil {
			t.Fatalf("sync run failed: %v", err)
		}

		if len(dest.Inserted) != 1 || dest.Inserted[0] != "vid-a" {
			t.Errorf("expected vid-a inserted, got %v", dest.Inserted)
		}
		if !strings.Contains(output.String(), "Sync Complete") {
			t.Errorf("expected completion banner, got %q", output.String())
		}

		status, err := shared.ReadStatus(runner.config.StatusFile())
		if err != nil {
			t.Fatalf("expected status file: %v", err)
		}
		if status.Status != "success" || status.TracksAdded != 1 {
			t.Errorf("unexpected status %+v", status)
		}
	})

	t.Run("fails without services", func(t *testing.T) {
		runner, _ := newSyncRunner(t, nil, nil)
		runner.source = nil
		runner.dest = nil

		app := syncCommand(runner)
		if err := app.Run(context.Background(), []string{"sync", "run"}); err == nil {
			t.Error("expected error without initialized services")
		}
	})

	t.Run("rejects concurrent runs", func(t *testing.T) {
		source := &tu.MockSource{}
		dest := &tu.MockDest{}
		runner, _ := newSyncRunner(t, source, dest)

		lock := shared.NewRunLock(runner.config.LockFile())
		if err := lock.Acquire(); err != nil {
			t.Fatal(err)
		}
		defer lock.Release()

		app := syncCommand(runner)
		err := app.Run(context.Background(), []string{"sync", "run"})
		if err == nil || !strings.Contains(err.Error(), "already running") {
			t.Errorf("expected lock rejection, got %v", err)
		}
	})

	t.Run("status before any run", func(t *testing.T) {
		runner, output := newSyncRunner(t, &tu.MockSource{}, &tu.MockDest{})

		app := syncCommand(runner)
		if err := app.Run(context.Background(), []string{"sync", "status"}); err != nil {
			t.Fatalf("sync status failed: %v", err)
		}
		if !strings.Contains(output.String(), "No sync has run yet") {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func TestCacheCommands(t *testing.T) {
	newCacheRunner := func(t *testing.T) (*Runner, *bytes.Buffer) {
		t.Helper()
		config := shared.DefaultConfig()
		config.Sync.DataDir = t.TempDir()
		output := &bytes.Buffer{}
		return NewRunner(RunnerOpts{Config: config, Output: output}), output
	}

	t.Run("stats on empty cache", func(t *testing.T) {
		runner, output := newCacheRunner(t)

		app := cacheCommand(runner)
		if err := app.Run(context.Background(), []string{"cache", "stats"}); err != nil {
			t.Fatalf("cache stats failed: %v", err)
		}
		if !strings.Contains(output.String(), "Entries:    0") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("clear removes entries", func(t *testing.T) {
		runner, output := newCacheRunner(t)

		seeded := runner.openCache()
		seeded.Set("Song", "Artist", "vid-1")
		seeded.Save()

		app := cacheCommand(runner)
		if err := app.Run(context.Background(), []string{"cache", "clear"}); err != nil {
			t.Fatalf("cache clear failed: %v", err)
		}
		if !strings.Contains(output.String(), "1 entries dropped") {
			t.Errorf("unexpected output %q", output.String())
		}

		if runner.openCache().Len() != 0 {
			t.Error("expected cache to be empty after clear")
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("setup config writes template", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		app := setupCommand(runner)
		if err := app.Run(context.Background(), []string{"setup", "config", "--config", configPath}); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}

		if _, err := shared.LoadConfig(configPath); err != nil {
			t.Errorf("created config should parse: %v", err)
		}
	})

	t.Run("setup database migrates", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := shared.CreateConfigFile(configPath); err != nil {
			t.Fatal(err)
		}

		// Point the database into the temp dir.
		content, err := os.ReadFile(configPath)
		if err != nil {
			t.Fatal(err)
		}
		patched := strings.Replace(string(content),
			`path = ".ytsync/ytsync.db"`,
			`path = "`+filepath.Join(tmpDir, "runs.db")+`"`, 1)
		if err := os.WriteFile(configPath, []byte(patched), 0644); err != nil {
			t.Fatal(err)
		}

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		app := setupCommand(runner)
		if err := app.Run(context.Background(), []string{"setup", "database", "--config", configPath}); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}

		if _, err := os.Stat(filepath.Join(tmpDir, "runs.db")); err != nil {
			t.Errorf("expected database file to exist: %v", err)
		}
	})
}
