package dataprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ctrwatch/internal/errors"
)

const sampleHeader = "partner_id,campaign_id,timestamp,clicks,impressions,ad_slot\n"

func TestParseReader(t *testing.T) {
	input := sampleHeader +
		"brightblox,camp-01,2024-03-05,10,100,banner_top\n" +
		"toonjoy,camp-02,05/03/2024,N/A,NULL,sidebar\n"

	rows, err := ParseReader(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "brightblox", rows[0].PartnerID)
	assert.Equal(t, "camp-01", rows[0].CampaignID)
	assert.Equal(t, "100", rows[0].Impressions)
	// Raw rows carry cell text untouched, missing tokens included.
	assert.Equal(t, "NULL", rows[1].Impressions)
	assert.Equal(t, "N/A", rows[1].Clicks)
}

func TestParseReaderColumnOrderFree(t *testing.T) {
	input := "ad_slot,impressions,partner_id,clicks,timestamp,campaign_id\n" +
		"banner_top,100,brightblox,10,2024-03-05,camp-01\n"

	rows, err := ParseReader(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "brightblox", rows[0].PartnerID)
	assert.Equal(t, "10", rows[0].Clicks)
}

func TestParseReaderMissingColumn(t *testing.T) {
	input := "partner_id,campaign_id,timestamp,clicks,ad_slot\n" +
		"brightblox,camp-01,2024-03-05,10,banner_top\n"

	_, err := ParseReader(strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, apperrors.IsStructural(err))
	assert.Contains(t, err.Error(), "impressions")
}

func TestParseReaderEmptyInput(t *testing.T) {
	_, err := ParseReader(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, apperrors.IsStructural(err))
}

func TestParseReaderShortRecord(t *testing.T) {
	input := sampleHeader + "brightblox,camp-01\n"

	rows, err := ParseReader(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Impressions)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.csv")
	content := sampleHeader + "kidzsy,camp-07,2024-03-05,2,40,footer\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "kidzsy", rows[0].PartnerID)
}

func TestParseFileNotFound(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsStructural(err))
}
