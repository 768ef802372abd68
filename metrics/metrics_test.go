/**
 * Copyright 2024 Confluent Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.CacheMiss(PlanWrite)
	m.CacheHit(PlanWrite)
	m.CacheHit(PlanWrite)
	m.Block(DirectionWrite, 10, 1024)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.PlanCacheHits.WithLabelValues(PlanWrite)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PlanCacheMisses.WithLabelValues(PlanWrite)))
	assert.Equal(t, float64(10), testutil.ToFloat64(m.ContainerRecords.WithLabelValues(DirectionWrite)))

	_, err = New(reg)
	assert.Error(t, err, "registering twice must fail")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.CacheHit(PlanRead)
	m.CacheMiss(PlanRead)
	m.CompileError(PlanRead)
	m.Block(DirectionRead, 1, 1)
}
