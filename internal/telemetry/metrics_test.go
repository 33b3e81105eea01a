package telemetry

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_StoreObserver(t *testing.T) {
	c := NewCollector()

	c.ObserveMutation("add", 1)
	c.ObserveMutation("add", 2)
	c.ObserveMutation("delete", 1)
	c.ObservePersistFailure("add")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.mutations.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.mutations.WithLabelValues("delete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.persistFailures.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.records))
}

func TestCollector_FetchObserver(t *testing.T) {
	c := NewCollector()

	c.ObserveFetch("ok")
	c.ObserveFetch("error")
	c.ObserveFetch("error")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.fetches.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.fetches.WithLabelValues("error")))
}

func TestCollector_RegistryExposition(t *testing.T) {
	c := NewCollector()
	c.ObserveMutation("replace_all", 10)

	expected := `
# HELP usermgmt_store_mutations_total Accepted record store mutations, by operation.
# TYPE usermgmt_store_mutations_total counter
usermgmt_store_mutations_total{op="replace_all"} 1
`
	err := testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "usermgmt_store_mutations_total")
	assert.NoError(t, err)
}

func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector()
	c.ObserveRecords(4)
	c.ObserveMutation("add", 5)
	c.ObserveFetch("ok")

	samples, err := c.Snapshot()
	require.NoError(t, err)

	lines := make([]string, len(samples))
	for i, s := range samples {
		lines[i] = s.String()
	}
	assert.Equal(t, []string{
		`usermgmt_directory_fetches_total{outcome="ok"} 1`,
		`usermgmt_store_mutations_total{op="add"} 1`,
		`usermgmt_store_records 5`,
	}, lines)
}

func TestCollector_SnapshotEmpty(t *testing.T) {
	samples, err := NewCollector().Snapshot()
	require.NoError(t, err)
	// The gauge is always present; vectors appear only once observed.
	require.Len(t, samples, 1)
	assert.Equal(t, "usermgmt_store_records 0", samples[0].String())
}

func TestCollectors_AreIndependent(t *testing.T) {
	a, b := NewCollector(), NewCollector()
	a.ObserveFetch("ok")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.fetches.WithLabelValues("ok")))
}
