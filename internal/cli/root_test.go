package cli

import "testing"

func TestRootCmd_Migrate(t *testing.T) {
	root := NewRootCmd()

	cmd, _, err := root.Find([]string{"migrate"})
	if err != nil || cmd.Name() != "migrate" {
		t.Fatalf("migrate command not registered: %v", err)
	}

	for _, name := range []string{"mongo", "dry-run", "gc-rate", "billing-day", "batch-size", "legacy-sql", "config"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("flag --%s missing", name)
		}
	}
}

func TestMigrate_InvalidConfig(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"migrate", "--billing-day=40"})
	root.SilenceErrors = true

	if err := root.Execute(); err == nil {
		t.Fatal("expected invalid billing day to fail before connecting")
	}
}
