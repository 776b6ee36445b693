package utils

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_Layouts(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-15", "15/03/2024", "2024-03-15T00:00:00", "2024-03-15 00:00"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}
}

func TestParseDate_DropsZoneKeepsClock(t *testing.T) {
	got, err := ParseDate("2024-03-15T08:30:00+07:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC), got)

	got, err = ParseDate("2024-03-15T08:30:00.123Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC), got)
}

func TestParseDate_Malformed(t *testing.T) {
	_, err := ParseDate("2024-13-45")
	require.Error(t, err)

	var dateErr *DateParseError
	assert.True(t, errors.As(err, &dateErr))
	assert.True(t, IsDateParseError(err))
}

func TestDayRange_IsInclusiveOfLastDay(t *testing.T) {
	from := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)
	start, end := DayRange(from, to)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestNaiveTime_JSON(t *testing.T) {
	var payload struct {
		IssueDate NaiveTime `json:"issue_date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"issue_date":"2024-05-01"}`), &payload))
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), payload.IssueDate.Time)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"issue_date":"2024-05-01T00:00:00"}`, string(out))

	err = json.Unmarshal([]byte(`{"issue_date":"not a date"}`), &payload)
	assert.True(t, IsDateParseError(err))
}

func TestNaiveTime_EmptyAndNull(t *testing.T) {
	var payload struct {
		IssueDate *NaiveTime `json:"issue_date"`
	}
	err := json.Unmarshal([]byte(`{"issue_date":""}`), &payload)
	assert.True(t, IsDateParseError(err))

	require.NoError(t, json.Unmarshal([]byte(`{"issue_date":null}`), &payload))
	assert.Nil(t, payload.IssueDate)

	kept := NewNaiveTime(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, kept.UnmarshalJSON([]byte("null")))
	assert.Equal(t, 2024, kept.Year())
}

func TestCheckPatchDate(t *testing.T) {
	assert.NoError(t, CheckPatchDate("issue_date", nil))

	set := NewNaiveTime(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, CheckPatchDate("issue_date", &set))

	err := CheckPatchDate("issue_date", &NaiveTime{})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "issue_date", ve.Field)
}
