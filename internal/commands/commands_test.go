package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomina-dev/nomina/internal/commands"
	"github.com/nomina-dev/nomina/internal/model"
)

const sampleQIF = `!Type:Cat
NGroceries
^
!Account
NChecking
TBank
^
!Type:Bank
D2024-01-15
T-42.50
MWeekly shop
LGroceries
^
D2024-06-20
T-12.00
MCinema
LGroceries
^
`

func writeSampleQIF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.qif")
	require.NoError(t, os.WriteFile(path, []byte(sampleQIF), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDetect(t *testing.T) {
	input := writeSampleQIF(t)
	out, err := runCommand(t, "detect", input)
	require.NoError(t, err)
	assert.Contains(t, out, "Quicken Interchange Format (QIF)")
}

func TestDetect_Unknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o644))

	out, err := runCommand(t, "detect", path)
	require.Error(t, err)
	assert.Contains(t, out, "unknown")
}

func TestFormats(t *testing.T) {
	out, err := runCommand(t, "formats")
	require.NoError(t, err)
	assert.Contains(t, out, "LB-YAML")
	assert.Contains(t, out, "GnuCash XML")
	assert.Contains(t, out, ".qif")
}

func TestConvert(t *testing.T) {
	input := writeSampleQIF(t)
	output := filepath.Join(t.TempDir(), "out.yaml")

	_, err := runCommand(t, "convert", input, "-f", "lb-yaml", "-o", output)
	require.NoError(t, err)

	book, err := model.LoadBook(output)
	require.NoError(t, err)
	assert.Len(t, book.Transactions, 2)
	assert.NotNil(t, book.LookupAccount("Checking"))
}

func TestConvert_DateFilter(t *testing.T) {
	input := writeSampleQIF(t)
	output := filepath.Join(t.TempDir(), "out.yaml")

	_, err := runCommand(t, "convert", input, "-o", output, "--start", "2024-06-01")
	require.NoError(t, err)

	book, err := model.LoadBook(output)
	require.NoError(t, err)
	assert.Len(t, book.Transactions, 1)
}

func TestConvert_UnsupportedOutput(t *testing.T) {
	input := writeSampleQIF(t)
	_, err := runCommand(t, "convert", input, "-f", "MONEY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestStats(t *testing.T) {
	input := writeSampleQIF(t)
	out, err := runCommand(t, "stats", input)
	require.NoError(t, err)
	assert.Contains(t, out, "(QIF)")
	assert.Contains(t, out, "# Transactions: 2")
	assert.Contains(t, out, "2024-01-15 to 2024-06-20")
}

func TestSplit(t *testing.T) {
	input := writeSampleQIF(t)
	dir := t.TempDir()

	out, err := runCommand(t, "split", input, "-n", "2", "-d", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "export-1.yaml")

	first, err := model.LoadBook(filepath.Join(dir, "export-1.yaml"))
	require.NoError(t, err)
	second, err := model.LoadBook(filepath.Join(dir, "export-2.yaml"))
	require.NoError(t, err)
	assert.Len(t, first.Transactions, 1)
	assert.Len(t, second.Transactions, 1)
}
