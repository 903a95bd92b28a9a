package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	data := `# seed pages
https://www.canada.ca/en/immigration-refugees-citizenship/services/application/application-forms-guides/guide-5487.html

  https://www.canada.ca/content/dam/ircc/documents/pdf/english/kits/forms/imm5707e.pdf
# trailing comment
`
	path := filepath.Join(t.TempDir(), "sources.txt")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	urls, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.canada.ca/en/immigration-refugees-citizenship/services/application/application-forms-guides/guide-5487.html",
		"https://www.canada.ca/content/dam/ircc/documents/pdf/english/kits/forms/imm5707e.pdf",
	}, urls)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
