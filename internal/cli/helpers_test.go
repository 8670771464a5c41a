package cli_test

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

// localConfig builds a minimal localconfig.vdf. With launchOptions == ""
// the app block has no LaunchOptions key; with installed == false there is
// no app block at all.
func localConfig(accountID, name, launchOptions string, installed bool) string {
	var sb strings.Builder

	sb.WriteString("\"UserLocalConfigStore\"\n{\n")
	sb.WriteString("\t\"friends\"\n\t{\n")
	sb.WriteString("\t\t\"" + accountID + "\"\n\t\t{\n")
	sb.WriteString("\t\t\t\"name\"\t\t\"" + name + "\"\n")
	sb.WriteString("\t\t\t\"avatar\"\t\t\"abc123\"\n")
	sb.WriteString("\t\t}\n\t}\n")
	sb.WriteString("\t\"Software\"\n\t{\n\t\t\"Valve\"\n\t\t{\n\t\t\t\"Steam\"\n\t\t\t{\n")
	sb.WriteString("\t\t\t\t\"apps\"\n\t\t\t\t{\n")
	sb.WriteString("\t\t\t\t\t\"570\"\n\t\t\t\t\t{\n\t\t\t\t\t\t\"LaunchOptions\"\t\t\"-novid\"\n\t\t\t\t\t}\n")

	if installed {
		sb.WriteString("\t\t\t\t\t\"2357570\"\n\t\t\t\t\t{\n")
		sb.WriteString("\t\t\t\t\t\t\"LastPlayed\"\t\t\"1712345678\"\n")

		if launchOptions != "" {
			sb.WriteString("\t\t\t\t\t\t\"LaunchOptions\"\t\t\"" + launchOptions + "\"\n")
		}

		sb.WriteString("\t\t\t\t\t}\n")
	}

	sb.WriteString("\t\t\t\t}\n\t\t\t}\n\t\t}\n\t}\n}\n")

	return sb.String()
}

const battleNetConfig = `{
    "Games": {
        "prometheus": {
            "AdditionalLaunchArguments": "--lobbyMap=0x1",
            "LastActioned": "1712345678"
        }
    }
}
`

func assertExit(t *testing.T, got, want int, stderr string) {
	t.Helper()

	if got != want {
		t.Fatalf("exitCode=%d, want=%d\nstderr: %s", got, want, stderr)
	}
}

func assertFileMissing(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("%s: stat err=%v, want not exist", path, err)
	}
}

func waitForFile(t *testing.T, path string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}

		time.Sleep(20 * time.Millisecond)
	}

	t.Fatalf("%s did not appear", path)
}
