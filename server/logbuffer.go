/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package server

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultLogBufferSize = 500

type LogEntry struct {
	Message string                 `json:"message"`
	Level   string                 `json:"level"`
	Time    time.Time              `json:"time"`
	Data    map[string]interface{} `json:"data"`
}

// LogBuffer is a logrus hook keeping the most recent entries for the
// /log route
type LogBuffer struct {
	mutex   sync.Mutex
	size    int
	entries []LogEntry
}

func NewLogBuffer(size int) *LogBuffer {
	if size <= 0 {
		size = DefaultLogBufferSize
	}

	return &LogBuffer{size: size}
}

func (lb *LogBuffer) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (lb *LogBuffer) Fire(e *logrus.Entry) error {
	data := make(map[string]interface{}, len(e.Data))
	for k, v := range e.Data {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		data[k] = v
	}

	lb.mutex.Lock()
	defer lb.mutex.Unlock()

	lb.entries = append(lb.entries, LogEntry{
		Message: e.Message,
		Level:   e.Level.String(),
		Time:    e.Time,
		Data:    data,
	})

	if len(lb.entries) > lb.size {
		lb.entries = lb.entries[len(lb.entries)-lb.size:]
	}

	return nil
}

// Entries returns a copy, oldest first
func (lb *LogBuffer) Entries() []LogEntry {
	lb.mutex.Lock()
	defer lb.mutex.Unlock()

	return append([]LogEntry{}, lb.entries...)
}
