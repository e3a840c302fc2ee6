// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package command

import "time"

// MetricsRecorder tracks command execution metrics for a single dispatch.
type MetricsRecorder struct {
	startTime   time.Time
	commandName string
	status      string
}

// NewMetricsRecorder initializes a recorder for a single dispatch.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{startTime: time.Now()}
}

// SetCommandName sets the command name for metrics.
func (m *MetricsRecorder) SetCommandName(name string) {
	m.commandName = name
}

// SetStatus sets the execution status for metrics.
func (m *MetricsRecorder) SetStatus(status string) {
	m.status = status
}

// Record writes the collected metrics if command name is available.
func (m *MetricsRecorder) Record() {
	if m.commandName == "" {
		return
	}

	RecordCommandExecution(m.commandName, m.status)
	RecordCommandDuration(m.commandName, time.Since(m.startTime))
}
