package esfilter

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureFilter = `{
	"id": "0001",
	"authors": ["John", "Jane"],
	"deleted": null,
	"start_date(min)": "2017-01-01T00:00:00",
	"end_date(max)": "2018-01-01T00:00:00",
	"age(min)": 25,
	"tags(not)": ["foo", "bar"],
	"published(not)": null,
	"colors(any)": ["blue", "green"],
	"colors(none)": ["red"],
	"category(all)": ["A", "B", "C"]
}`

const fixtureQuery = `{
	"bool": {
		"must": [
			{"term": {"id": "0001"}},
			{"terms": {"authors": ["John", "Jane"]}},
			{"missing": {"field": "deleted"}},
			{"range": {"start_date": {"gte": "2017-01-01T00:00:00"}}},
			{"range": {"end_date": {"lte": "2018-01-01T00:00:00"}}},
			{"range": {"age": {"gte": 25}}},
			{"terms": {"colors": ["blue", "green"]}},
			{"term": {"category": ["A", "B", "C"]}}
		],
		"must_not": [
			{"terms": {"tags": ["foo", "bar"]}},
			{"missing": {"field": "published"}},
			{"term": {"colors": ["red"]}}
		]
	}
}`

func TestCompile_Fixture(t *testing.T) {
	f, err := ParseJSON([]byte(fixtureFilter))
	require.NoError(t, err)
	require.Equal(t, 11, f.Len())

	q, err := Compile(f)
	require.NoError(t, err)

	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, fixtureQuery, string(out))
}

func TestCompile_FixtureFromGoValues(t *testing.T) {
	var f Filter
	f.Add("id", "0001").
		Add("authors", []string{"John", "Jane"}).
		Add("deleted", nil).
		Add("start_date(min)", "2017-01-01T00:00:00").
		Add("end_date(max)", "2018-01-01T00:00:00").
		Add("age(min)", 25).
		Add("tags(not)", []string{"foo", "bar"}).
		Add("published(not)", nil).
		Add("colors(any)", []string{"blue", "green"}).
		Add("colors(none)", []string{"red"}).
		Add("category(all)", []string{"A", "B", "C"})

	q, err := Compile(f)
	require.NoError(t, err)
	assert.Len(t, q.Must, 8)
	assert.Len(t, q.MustNot, 3)

	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, fixtureQuery, string(out))
}

func TestCompile_BucketOrder(t *testing.T) {
	f := NewFilter(
		Entry{Key: "a", Value: Scalar(1)},
		Entry{Key: "b(not)", Value: Scalar(2)},
		Entry{Key: "c(min)", Value: Scalar(3)},
	)

	q, err := Compile(f)
	require.NoError(t, err)

	require.Len(t, q.Must, 2)
	require.Len(t, q.MustNot, 1)
	assert.Equal(t, ClauseTerm, q.Must[0].Kind)
	assert.Equal(t, "a", q.Must[0].Field)
	assert.Equal(t, ClauseRange, q.Must[1].Kind)
	assert.Equal(t, "c", q.Must[1].Field)
	assert.Equal(t, ClauseTerm, q.MustNot[0].Kind)
	assert.Equal(t, "b", q.MustNot[0].Field)
}

func TestCompile_UnknownOperator(t *testing.T) {
	f := NewFilter(
		Entry{Key: "year(min)", Value: Scalar(1973)},
		Entry{Key: "id(foo)", Value: Scalar("0001")},
	)

	q, err := Compile(f)
	require.Error(t, err)
	assert.True(t, q.IsEmpty())

	var opErr *UnknownOperatorError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "id(foo)", opErr.Key)
	assert.Equal(t, "foo", opErr.Operator)
	assert.True(t, errors.Is(err, ErrInvalidFilter))
	assert.Equal(t, "invalid filter key 'id(foo)': unknown operator 'foo'", err.Error())
}

func TestCompile_Empty(t *testing.T) {
	q, err := Compile(Filter{})
	require.NoError(t, err)
	assert.True(t, q.IsEmpty())
	assert.Empty(t, q.Source())

	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(out))
}

func TestCompile_OmitsEmptyBucket(t *testing.T) {
	q, err := Compile(NewFilter(Entry{Key: "tags(not)", Value: List("x")}))
	require.NoError(t, err)

	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bool":{"must_not":[{"terms":{"tags":["x"]}}]}}`, string(out))
	assert.NotContains(t, string(out), `"must"`)
}

func TestCompile_MissingExists(t *testing.T) {
	f := NewFilter(
		Entry{Key: "deleted", Value: Null()},
		Entry{Key: "published(not)", Value: Null()},
	)

	q, err := Compiler{Missing: MissingExists}.Compile(f)
	require.NoError(t, err)

	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bool":{
		"must":[{"bool":{"must_not":[{"exists":{"field":"deleted"}}]}}],
		"must_not":[{"bool":{"must_not":[{"exists":{"field":"published"}}]}}]
	}}`, string(out))
}

func TestCompile_Idempotent(t *testing.T) {
	f, err := ParseJSON([]byte(fixtureFilter))
	require.NoError(t, err)

	q1, err := Compile(f)
	require.NoError(t, err)
	q2, err := Compile(f)
	require.NoError(t, err)

	b1, err := json.Marshal(q1)
	require.NoError(t, err)
	b2, err := json.Marshal(q2)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestCompile_MinMaxPassThrough(t *testing.T) {
	f := NewFilter(
		Entry{Key: "a(min)", Value: Null()},
		Entry{Key: "b(max)", Value: List(1, 2)},
	)

	q, err := Compile(f)
	require.NoError(t, err)

	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bool":{"must":[
		{"range":{"a":{"gte":null}}},
		{"range":{"b":{"lte":[1,2]}}}
	]}}`, string(out))
}

func TestFilter_SetKeepsPosition(t *testing.T) {
	var f Filter
	f.Set("a", Scalar(1))
	f.Set("b", Scalar(2))
	f.Set("a", Scalar(3))

	entries := f.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Key)
	assert.Equal(t, 3, entries[0].Value.Scalar())
	assert.Equal(t, "b", entries[1].Key)

	v, ok := f.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v.Scalar())
	_, ok = f.Get("c")
	assert.False(t, ok)
}

func TestFilter_MarshalJSONKeepsOrder(t *testing.T) {
	f := NewFilter(
		Entry{Key: "z", Value: Scalar("1")},
		Entry{Key: "a(not)", Value: List("x", "y")},
		Entry{Key: "m", Value: Null()},
	)

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"z":"1","a(not)":["x","y"],"m":null}`, string(out))
}

func TestValueOf(t *testing.T) {
	assert.Equal(t, KindNull, ValueOf(nil).Kind())
	assert.Equal(t, KindScalar, ValueOf("x").Kind())
	assert.Equal(t, KindScalar, ValueOf(false).Kind())
	assert.Equal(t, KindScalar, ValueOf(1.5).Kind())
	assert.Equal(t, KindList, ValueOf([]int{1, 2}).Kind())
	assert.Equal(t, KindList, ValueOf([]interface{}{}).Kind())
	assert.Equal(t, KindNull, ValueOf([]string(nil)).Kind())
	assert.Equal(t, []interface{}{1, 2}, ValueOf([2]int{1, 2}).List())

	var p *int
	assert.Equal(t, KindNull, ValueOf(p).Kind())
}
