package backup

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "My_Novel", SafeFilename("  My Novel  "))
	assert.Equal(t, "a_b_c_d", SafeFilename(`a/b:c?d`))
	assert.Equal(t, "cowrite", SafeFilename("   "))
	assert.Equal(t, "소설_제목", SafeFilename("소설 제목"))
	assert.Len(t, []rune(SafeFilename(strings.Repeat("x", 300))), maxFilenameStem)
}

func TestArchiveFilename(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "Saga_backup_20250102030405.zip", ArchiveFilename("Saga", at))
}
