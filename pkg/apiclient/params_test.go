package apiclient

import (
	"math"
	"testing"
)

func TestParamsQueryKeepsTruthyValuesInOrder(t *testing.T) {
	cases := []struct {
		name   string
		params Params
		want   string
	}{
		{name: "mixed", params: P("a", "1", "b", "", "c", "x"), want: "a=1&c=x"},
		{name: "empty", params: Params{}, want: ""},
		{name: "nil", params: nil, want: ""},
		{name: "all falsy", params: P("a", "", "b", 0, "c", false, "d", nil, "e", math.NaN()), want: ""},
		{name: "order kept", params: P("z", "1", "a", "2", "m", "3"), want: "z=1&a=2&m=3"},
		{name: "numbers and bools", params: P("page", 2, "featured", true, "per_page", 0), want: "page=2&featured=true"},
		{name: "escaped", params: P("search", "go & rust", "tag", "a/b"), want: "search=go+%26+rust&tag=a%2Fb"},
		{name: "string zero is truthy", params: P("page", "0"), want: "page=0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.params.Query(); got != tc.want {
				t.Fatalf("Query() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestWithQueryOmitsQuestionMark(t *testing.T) {
	if got := withQuery("/articles", P("a", "")); got != "/articles" {
		t.Fatalf("unexpected endpoint %q", got)
	}
	if got := withQuery("/articles", P("a", "1", "b", "", "c", "x")); got != "/articles?a=1&c=x" {
		t.Fatalf("unexpected endpoint %q", got)
	}
}

func TestParamsAddDoesNotAlias(t *testing.T) {
	base := make(Params, 1, 4)
	base[0] = Param{Key: "a", Value: "1"}
	x := base.Add("b", "2")
	y := base.Add("c", "3")
	if x[1].Key != "b" || y[1].Key != "c" {
		t.Fatalf("Add aliased the backing array: %v %v", x, y)
	}
}

func TestPDropsDanglingKey(t *testing.T) {
	p := P("a", 1, "b")
	if len(p) != 1 || p[0].Key != "a" {
		t.Fatalf("unexpected params %#v", p)
	}
}
