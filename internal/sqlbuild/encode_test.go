package sqlbuild

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type critter struct {
	AnimalID string `json:"animal_id"`
	Species  string `json:"species"`
}

type cyclic struct {
	Next *cyclic
}

func TestEncode_Scalars(t *testing.T) {
	var nilString *string
	name := "O'Brien"

	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"nil", nil, "NULL"},
		{"nil pointer", nilString, "NULL"},
		{"pointer", &name, "'O''Brien'"},
		{"string with quotes", "it's a 'test'", "'it''s a ''test'''"},
		{"empty string", "", "''"},
		{"negative int", -42, "-42"},
		{"uint", uint8(7), "7"},
		{"float", 3.25, "3.25"},
		{"negative float", -0.5, "-0.5"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"time", time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC), "'2021-03-04T05:06:07Z'"},
		{"uuid", uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), "'6ba7b810-9dad-11d1-80b4-00c04fd430c8'"},
		{"decimal", decimal.RequireFromString("148.4"), "148.4"},
		{"raw", Raw("bctw.get_user_id('idir')"), "bctw.get_user_id('idir')"},
		{"bytes", []byte{0xde, 0xad}, `'\xdead'::bytea`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Encode(test.input)
			require.NoError(t, err)
			assert.Equal(t, test.expected, got)
		})
	}
}

func TestEncode_Arrays(t *testing.T) {
	a := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	b := uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"ints", []int{1, -2, 3}, "ARRAY[1, -2, 3]"},
		{"strings", []string{"a", "b'c"}, "ARRAY['a', 'b''c']"},
		{"empty", []string{}, "'{}'"},
		{"nil slice", []int(nil), "NULL"},
		{"uuids", []uuid.UUID{a, b}, "ARRAY['" + a.String() + "', '" + b.String() + "']::uuid[]"},
		{"empty uuids", []uuid.UUID{}, "'{}'::uuid[]"},
		{"fixed array", [2]bool{true, false}, "ARRAY[true, false]"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Encode(test.input)
			require.NoError(t, err)
			assert.Equal(t, test.expected, got)
		})
	}
}

func TestEncode_JSON(t *testing.T) {
	t.Run("map", func(t *testing.T) {
		got, err := Encode(map[string]any{"species": "Caribou", "count": 2})
		require.NoError(t, err)
		assert.Equal(t, `'{"count":2,"species":"Caribou"}'::jsonb`, got)
	})

	t.Run("struct with quote", func(t *testing.T) {
		got, err := Encode(critter{AnimalID: "a1", Species: "Grizzly's"})
		require.NoError(t, err)
		assert.Equal(t, `'{"animal_id":"a1","species":"Grizzly''s"}'::jsonb`, got)
	})

	t.Run("slice of records", func(t *testing.T) {
		got, err := Encode([]critter{{AnimalID: "a1"}, {AnimalID: "a2"}})
		require.NoError(t, err)
		assert.Equal(t, `'[{"animal_id":"a1","species":""},{"animal_id":"a2","species":""}]'::jsonb`, got)
	})

	t.Run("raw message", func(t *testing.T) {
		got, err := Encode(json.RawMessage(`{"a":[1,2]}`))
		require.NoError(t, err)
		assert.Equal(t, `'{"a":[1,2]}'::jsonb`, got)
	})

	t.Run("nested objects survive a decode", func(t *testing.T) {
		in := map[string]any{"outer": map[string]any{"inner": []any{"x", 1.5}}}
		got, err := Encode(in)
		require.NoError(t, err)

		text := got[1 : len(got)-len("'::jsonb")]
		var out map[string]any
		require.NoError(t, json.Unmarshal([]byte(text), &out))
		assert.Equal(t, in, out)
	})
}

func TestEncode_Failures(t *testing.T) {
	loop := &cyclic{}
	loop.Next = loop

	selfSlice := make([]any, 1)
	selfSlice[0] = selfSlice

	var selfPointer any
	selfPointer = &selfPointer

	deep := any(1)
	for i := 0; i < maxEncodeDepth+1; i++ {
		deep = []any{deep}
	}

	tests := []struct {
		name  string
		input any
	}{
		{"func", func() {}},
		{"chan", make(chan int)},
		{"complex", complex(1, 2)},
		{"nan", math.NaN()},
		{"inf", math.Inf(-1)},
		{"nul byte", "a\x00b"},
		{"invalid raw json", json.RawMessage(`{"a":`)},
		{"cycle", loop},
		{"self-referencing slice", selfSlice},
		{"self-referencing pointer", &selfPointer},
		{"too deep", deep},
		{"func in array", []any{1, func() {}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Encode(test.input)
			require.Error(t, err)

			var encErr *EncodingError
			assert.True(t, errors.As(err, &encErr), "expected EncodingError, got %T", err)
		})
	}
}

func TestEncode_CyclicValueReason(t *testing.T) {
	s := make([]any, 2)
	s[0] = 1
	s[1] = s

	_, err := Encode(s)
	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "cyclic value", encErr.Reason)
}

func TestEncode_SharedValuesAreNotCycles(t *testing.T) {
	shared := []int{1, 2}
	got, err := Encode([]any{shared, shared})
	require.NoError(t, err)
	assert.Equal(t, "ARRAY[ARRAY[1, 2], ARRAY[1, 2]]", got)
}

func TestMustEncode_Panics(t *testing.T) {
	assert.Equal(t, "1", MustEncode(1))
	assert.Panics(t, func() { MustEncode(func() {}) })
}
