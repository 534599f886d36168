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

package model

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// CustomerPrimaryKey is the column that identifies a customer record.
	CustomerPrimaryKey = "customer_id"
	// CustomerFieldCount is the number of positional fields in a record row.
	CustomerFieldCount = 7
	// RecordDelimiter separates fields within a row.
	RecordDelimiter = "|"
)

// CustomerColumns lists the record columns in file order.
var CustomerColumns = []string{
	"customer_id", "created_date", "customer_name", "addr_street", "addr_city", "addr_state", "addr_zip",
}

// CustomerRecord is one pipe-delimited row of a customer data file:
//
//	customer_id|created_date|customer_name|addr_street|addr_city|addr_state|addr_zip
type CustomerRecord struct {
	CustomerID   int64  `json:"customer_id" bigquery:"customer_id" redis:"customer_id"`
	CreatedDate  string `json:"created_date" bigquery:"created_date" redis:"created_date"`
	CustomerName string `json:"customer_name" bigquery:"customer_name" redis:"customer_name"`
	AddrStreet   string `json:"addr_street" bigquery:"addr_street" redis:"addr_street"`
	AddrCity     string `json:"addr_city" bigquery:"addr_city" redis:"addr_city"`
	AddrState    string `json:"addr_state" bigquery:"addr_state" redis:"addr_state"`
	AddrZip      string `json:"addr_zip" bigquery:"addr_zip" redis:"addr_zip"`
}

// Values returns the record fields in CustomerColumns order.
func (r CustomerRecord) Values() []any {
	return []any{r.CustomerID, r.CreatedDate, r.CustomerName, r.AddrStreet, r.AddrCity, r.AddrState, r.AddrZip}
}

// RecordBatch is the result of parsing a data file. Skipped holds the 1-based
// line numbers of empty rows that were dropped.
type RecordBatch struct {
	Records []CustomerRecord
	Skipped []int
}

// ParseCustomerRecords parses a pipe-delimited body into customer records.
// Rows are separated by '\n' and a trailing '\r' is dropped. An empty row has
// no fields and is skipped. A row with fewer than seven fields or with a
// customer_id that is not an integer fails the whole batch. Fields after the
// seventh are ignored.
func ParseCustomerRecords(body string) (*RecordBatch, error) {
	batch := &RecordBatch{}
	for i, row := range strings.Split(body, "\n") {
		row = strings.TrimSuffix(row, "\r")
		if row == "" {
			batch.Skipped = append(batch.Skipped, i+1)
			continue
		}
		fields := strings.Split(row, RecordDelimiter)
		if len(fields) < CustomerFieldCount {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", i+1, CustomerFieldCount, len(fields))
		}
		id, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s %q is not an integer: %w", i+1, CustomerPrimaryKey, fields[0], err)
		}
		batch.Records = append(batch.Records, CustomerRecord{
			CustomerID:   id,
			CreatedDate:  fields[1],
			CustomerName: fields[2],
			AddrStreet:   fields[3],
			AddrCity:     fields[4],
			AddrState:    fields[5],
			AddrZip:      fields[6],
		})
	}
	return batch, nil
}

// LastWriteWins collapses records that share a customer_id so that the last
// occurrence in file order survives. The result keeps the order in which each
// surviving record appeared.
func LastWriteWins(records []CustomerRecord) []CustomerRecord {
	last := make(map[int64]int, len(records))
	for i, r := range records {
		last[r.CustomerID] = i
	}
	out := make([]CustomerRecord, 0, len(last))
	for i, r := range records {
		if last[r.CustomerID] == i {
			out = append(out, r)
		}
	}
	return out
}
