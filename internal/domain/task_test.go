package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veranemoloko/downloadtask/internal/download"
)

func TestTask_FinishedAndSucceeded(t *testing.T) {
	task := &Task{Downloads: []DownloadItem{
		{Status: DownloadStatusCompleted},
		{Status: DownloadStatusInProgress},
	}}
	assert.False(t, task.Finished())
	assert.False(t, task.Succeeded())

	task.Downloads[1].Status = DownloadStatusFailed
	assert.True(t, task.Finished())
	assert.False(t, task.Succeeded())

	task.Downloads[1].Status = DownloadStatusCompleted
	assert.True(t, task.Succeeded())
}

func TestTask_CloneIsDeep(t *testing.T) {
	outcome := download.OutcomeSuccess
	task := &Task{ID: uuid.New(), Downloads: []DownloadItem{{URL: "http://a", Outcome: &outcome}}}

	clone := task.Clone()
	clone.Downloads[0].URL = "http://b"
	*clone.Downloads[0].Outcome = download.OutcomeStorageError

	assert.Equal(t, "http://a", task.Downloads[0].URL)
	assert.Equal(t, download.OutcomeSuccess, *task.Downloads[0].Outcome)
}

func TestDownloadItem_OutcomeJSON(t *testing.T) {
	outcome := download.OutcomeTransportError
	data, err := json.Marshal(DownloadItem{URL: "http://a", Outcome: &outcome})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"outcome":"transport_error"`)

	var item DownloadItem
	require.NoError(t, json.Unmarshal(data, &item))
	require.NotNil(t, item.Outcome)
	assert.Equal(t, download.OutcomeTransportError, *item.Outcome)
}
