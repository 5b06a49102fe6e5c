package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertarktes/theatre-reservations/internal/domain"
)

func TestParseIDList(t *testing.T) {
	ids, err := ParseIDList("genres", "2,5,7")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 5, 7}, ids)

	ids, err = ParseIDList("genres", " 1, 2 ")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	ids, err = ParseIDList("genres", "")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = ParseIDList("actors", "1,x,3")
	var fe *domain.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "actors", fe.Field)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = ParseIDList("actors", "1,,3")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("date", "2022-10-23")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 10, 23, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("date", "23-10-2022")
	var fe *domain.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "date", fe.Field)

	_, err = ParseDate("date", "2022-13-40")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParsePage(t *testing.T) {
	limit, offset, err := ParsePage("", "", 20, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)

	limit, offset, err = ParsePage("50", "10", 20, 100)
	require.NoError(t, err)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 10, offset)

	limit, _, err = ParsePage("500", "", 20, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, limit)

	_, _, err = ParsePage("0", "", 20, 100)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = ParsePage("10", "-1", 20, 100)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
