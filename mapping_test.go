package xarc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/xarc"
)

func chargeable(t *testing.T) *xarc.Mapping {
	t.Helper()
	m, err := xarc.Define("time_entries", "chargeable").
		Relation("employee_id", "employees", "id").
		Relation("product_id", "products", "id").
		Build()
	require.NoError(t, err)
	return m
}

func TestDefineValid(t *testing.T) {
	t.Parallel()

	m := chargeable(t)
	assert.Equal(t, "time_entries", m.Table())
	assert.Equal(t, "chargeable", m.Role())
	assert.Equal(t, "id", m.PrimaryKey())
	assert.False(t, m.Unique())
	assert.Equal(t, []string{"employee_id", "product_id"}, m.Keys())
	assert.Equal(t, []string{"employee", "product"}, m.RelationNames())

	r, ok := m.RelationOf("product_id")
	require.True(t, ok)
	assert.Equal(t, xarc.Relation{Column: "product_id", RefTable: "products", RefColumn: "id"}, r)

	_, ok = m.RelationOf("owner_id")
	assert.False(t, ok)
}

func TestDefineInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func() *xarc.Builder
	}{
		{
			name: "empty_table",
			build: func() *xarc.Builder {
				return xarc.Define("", "chargeable").
					Relation("employee_id", "employees", "id").
					Relation("product_id", "products", "id")
			},
		},
		{
			name: "empty_role",
			build: func() *xarc.Builder {
				return xarc.Define("time_entries", "").
					Relation("employee_id", "employees", "id").
					Relation("product_id", "products", "id")
			},
		},
		{
			name: "single_relation",
			build: func() *xarc.Builder {
				return xarc.Define("time_entries", "chargeable").
					Relation("employee_id", "employees", "id")
			},
		},
		{
			name: "no_relations",
			build: func() *xarc.Builder {
				return xarc.Define("time_entries", "chargeable")
			},
		},
		{
			name: "duplicate_column",
			build: func() *xarc.Builder {
				return xarc.Define("time_entries", "chargeable").
					Relation("employee_id", "employees", "id").
					Relation("employee_id", "products", "id")
			},
		},
		{
			name: "blank_column",
			build: func() *xarc.Builder {
				return xarc.Define("time_entries", "chargeable").
					Relation("", "employees", "id").
					Relation("product_id", "products", "id")
			},
		},
		{
			name: "blank_ref_table",
			build: func() *xarc.Builder {
				return xarc.Define("time_entries", "chargeable").
					Relation("employee_id", "", "id").
					Relation("product_id", "products", "id")
			},
		},
		{
			name: "blank_ref_column",
			build: func() *xarc.Builder {
				return xarc.Define("time_entries", "chargeable").
					Relation("employee_id", "employees", "").
					Relation("product_id", "products", "id")
			},
		},
		{
			name: "column_is_primary_key",
			build: func() *xarc.Builder {
				return xarc.Define("time_entries", "chargeable").
					Relation("id", "employees", "id").
					Relation("product_id", "products", "id")
			},
		},
		{
			name: "unique_with_single_relation",
			build: func() *xarc.Builder {
				return xarc.Define("time_entries", "chargeable").
					Relation("employee_id", "employees", "id").
					UniqueAcrossRelations()
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := tt.build().Build()
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, xarc.IsInvalidMapping(err))
			assert.ErrorIs(t, err, xarc.ErrInvalidMapping)
		})
	}
}

func TestNamingDeterminism(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		m := chargeable(t)
		assert.Equal(t, "time_entries_employee_id", m.FKName("employee_id"))
		assert.Equal(t, "time_entries_product_id_idx", m.IndexName("product_id"))
		assert.Equal(t, "time_entries_chargeable_check", m.TriggerName())
	})

	t.Run("prefixes", func(t *testing.T) {
		t.Parallel()
		m, err := xarc.Define("time_entries", "chargeable").
			Relation("employee_id", "employees", "id").
			Relation("product_id", "products", "id").
			ForeignKeyPrefix("fk_chargeable_").
			IndexPrefix("ix_chargeable_").
			Build()
		require.NoError(t, err)
		assert.Equal(t, "fk_chargeable_employee_id", m.FKName("employee_id"))
		assert.Equal(t, "ix_chargeable_product_id", m.IndexName("product_id"))
	})

	t.Run("two_builds_same_names", func(t *testing.T) {
		t.Parallel()
		m1, m2 := chargeable(t), chargeable(t)
		assert.Equal(t, m1.FKName("employee_id"), m2.FKName("employee_id"))
		assert.Equal(t, m1.IndexName("employee_id"), m2.IndexName("employee_id"))
		assert.Equal(t, m1.TriggerName(), m2.TriggerName())
	})
}

func TestMappingImmutability(t *testing.T) {
	t.Parallel()

	m := chargeable(t)

	keys := m.Keys()
	keys[0] = "mutated"
	assert.Equal(t, []string{"employee_id", "product_id"}, m.Keys())

	relations := m.Relations()
	relations[0].Column = "mutated"
	assert.Equal(t, "employee_id", m.Relations()[0].Column)
}

func TestMustBuildPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		xarc.Define("time_entries", "chargeable").MustBuild()
	})
	assert.NotPanics(t, func() {
		chargeable(t)
	})
}

func TestRelationNamesSingularize(t *testing.T) {
	t.Parallel()

	m, err := xarc.Define("attachments", "owner").
		Relation("invoice_id", "invoices", "id").
		Relation("delivery_id", "deliveries", "id").
		Relation("person_id", "people", "id").
		Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"invoice", "delivery", "person"}, m.RelationNames())
}
