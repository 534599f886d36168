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

// Package model defines the data structures that flow through a file
// processing job. This file holds the job context, the structured form of an
// inbound filename, and the parser that builds it.
//
// An inbound object key looks like:
//
//	<prefix><ts>-<type>-<ptype>-<psub>-<src>-<schema>-<env>-<ver>-<table>-<partition>.<ext>
//
// The parser is deliberately strict about shape and deliberately lax about
// content: the key must split into exactly ten hyphen tokens and the last
// token must be exactly one name and one extension, but no token is checked
// against a list of known values.
package model

import (
	"fmt"
	"strings"
)

const (
	// FilenameTokenCount is the number of hyphen-delimited tokens in a filename.
	FilenameTokenCount = 10
	// DefaultPipelinePrefix is prepended to the process type and subtype to
	// name the downstream pipeline for the pipeline variant.
	DefaultPipelinePrefix = "EFM_DATA_PIPELINE_"
	// ExpectedFilenameFormat is reported to operators when a filename cannot be parsed.
	ExpectedFilenameFormat = "yyyy_mm_dd_hh24miss-[data,meta]-[normal,reproc]-[full,incr,dups,dels,errs]-[source]-[source_schema]-[env]-[version]-[table_name]-[partition_name].[file_ext]"
)

// JobContext is the parsed, validated representation of one inbound file. It
// is built once per event by ParseJobContext and never modified afterwards.
type JobContext struct {
	FileName       string `json:"file_name"`
	FileTimestamp  string `json:"file_timestamp"`
	FileType       string `json:"file_type"`
	ProcessType    string `json:"process_type"`
	ProcessSubtype string `json:"process_subtype"`
	SourceSystem   string `json:"source_system"`
	SourceSchema   string `json:"source_schema"`
	Environment    string `json:"environment"`
	Version        string `json:"version"` // case preserved
	TableName      string `json:"table_name"`
	PartitionName  string `json:"partition_name"`
	FileExtension  string `json:"file_extension"`
	FullTableName  string `json:"full_table_name"`
	TableID        string `json:"table_id"`
}

// ParseJobContext strips prefix from objectKey and parses the remaining
// filename into a JobContext. It fails with ErrPrefixMismatch when the key
// does not start with prefix, with a *TokenCountError when the filename does
// not have exactly ten hyphen tokens and with ErrExtensionMismatch when the
// last token is not exactly "<partition>.<extension>".
func ParseJobContext(objectKey string, prefix string) (*JobContext, error) {
	fileName, ok := strings.CutPrefix(objectKey, prefix)
	if !ok {
		return nil, fmt.Errorf("%w: key %q, prefix %q", ErrPrefixMismatch, objectKey, prefix)
	}

	tokens := strings.Split(fileName, "-")
	if len(tokens) != FilenameTokenCount {
		return nil, &TokenCountError{Expected: FilenameTokenCount, Got: len(tokens)}
	}

	last := strings.Split(tokens[9], ".")
	if len(last) != 2 {
		return nil, fmt.Errorf("%w: %q has %d dot-separated parts", ErrExtensionMismatch, tokens[9], len(last))
	}

	job := &JobContext{
		FileName:       fileName,
		FileTimestamp:  tokens[0],
		FileType:       strings.ToUpper(tokens[1]),
		ProcessType:    strings.ToUpper(tokens[2]),
		ProcessSubtype: strings.ToUpper(tokens[3]),
		SourceSystem:   strings.ToUpper(tokens[4]),
		SourceSchema:   strings.ToUpper(tokens[5]),
		Environment:    strings.ToUpper(tokens[6]),
		Version:        tokens[7],
		TableName:      strings.ToUpper(tokens[8]),
		PartitionName:  strings.ToUpper(last[0]),
		FileExtension:  strings.ToUpper(last[1]),
	}
	job.FullTableName = job.SourceSchema + "_" + job.TableName
	job.TableID = job.SourceSystem + "_" + job.FullTableName + "_" + job.Environment + "_" + job.Version
	return job, nil
}

// PipelineName names the downstream pipeline that handles this job in the
// pipeline variant, e.g. EFM_DATA_PIPELINE_NORMAL_FULL_PART.
func (j *JobContext) PipelineName(prefix string) string {
	if prefix == "" {
		prefix = DefaultPipelinePrefix
	}
	return prefix + j.ProcessType + "_" + j.ProcessSubtype + "_PART"
}

// StoreTableName is the datastore table the file's records are loaded into.
func (j *JobContext) StoreTableName() string {
	return strings.ToLower(j.TableName)
}

// Attributes flattens the job context into string attributes for message
// headers.
func (j *JobContext) Attributes() map[string]string {
	return map[string]string{
		"file_name":       j.FileName,
		"file_timestamp":  j.FileTimestamp,
		"file_type":       j.FileType,
		"process_type":    j.ProcessType,
		"process_subtype": j.ProcessSubtype,
		"source_system":   j.SourceSystem,
		"source_schema":   j.SourceSchema,
		"environment":     j.Environment,
		"version":         j.Version,
		"table_name":      j.TableName,
		"partition_name":  j.PartitionName,
		"file_extension":  j.FileExtension,
		"full_table_name": j.FullTableName,
		"table_id":        j.TableID,
	}
}
