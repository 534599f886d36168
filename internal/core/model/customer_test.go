// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jaycherian/gcp-go-file-processor/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCustomerRecords(t *testing.T) {
	body := "1|2021-12-01|Ada|1 Main St|Austin|TX|78701\r\n" +
		"2|2021-12-02|Grace|2 Oak Ave|Dallas|TX|75201|extra\n"

	batch, err := model.ParseCustomerRecords(body)
	require.NoError(t, err)
	require.Len(t, batch.Records, 2)

	assert.Equal(t, model.CustomerRecord{
		CustomerID:   1,
		CreatedDate:  "2021-12-01",
		CustomerName: "Ada",
		AddrStreet:   "1 Main St",
		AddrCity:     "Austin",
		AddrState:    "TX",
		AddrZip:      "78701",
	}, batch.Records[0])
	assert.Equal(t, "75201", batch.Records[1].AddrZip)
	// The trailing newline leaves one empty row at the end.
	assert.Equal(t, []int{3}, batch.Skipped)
}

func TestParseCustomerRecords_SkipsEmptyRows(t *testing.T) {
	body := "\n1|a|b|c|d|e|f\n\r\n2|a|b|c|d|e|f"

	batch, err := model.ParseCustomerRecords(body)
	require.NoError(t, err)
	assert.Len(t, batch.Records, 2)
	assert.Equal(t, []int{1, 3}, batch.Skipped)
}

func TestParseCustomerRecords_ShortRow(t *testing.T) {
	_, err := model.ParseCustomerRecords("1|a|b|c|d|e|f\n2|a|b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2: expected 7 fields, got 3")
}

func TestParseCustomerRecords_BadKey(t *testing.T) {
	_, err := model.ParseCustomerRecords("abc|a|b|c|d|e|f")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "customer_id")

	batch, err := model.ParseCustomerRecords(" 42 |a|b|c|d|e|f")
	require.NoError(t, err)
	assert.Equal(t, int64(42), batch.Records[0].CustomerID)
}

func TestLastWriteWins(t *testing.T) {
	records := []model.CustomerRecord{
		{CustomerID: 1, CustomerName: "first"},
		{CustomerID: 2, CustomerName: "only"},
		{CustomerID: 1, CustomerName: "second"},
	}

	out := model.LastWriteWins(records)
	require.Len(t, out, 2)
	assert.Equal(t, "only", out[0].CustomerName)
	assert.Equal(t, "second", out[1].CustomerName)
}

func TestParseCustomerRecords_Generated(t *testing.T) {
	gofakeit.Seed(7)
	var rows []string
	for i := 1; i <= 50; i++ {
		rows = append(rows, fmt.Sprintf("%d|%s|%s|%s|%s|%s|%s",
			i,
			gofakeit.Date().Format("2006-01-02"),
			gofakeit.LetterN(8),
			gofakeit.Numerify("### Main St"),
			gofakeit.LetterN(6),
			gofakeit.StateAbr(),
			gofakeit.Zip(),
		))
	}

	batch, err := model.ParseCustomerRecords(strings.Join(rows, "\n"))
	require.NoError(t, err)
	assert.Len(t, batch.Records, 50)
	assert.Empty(t, batch.Skipped)
	assert.Equal(t, int64(50), batch.Records[49].CustomerID)
	assert.Len(t, batch.Records[0].Values(), model.CustomerFieldCount)
}
