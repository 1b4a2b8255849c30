package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValue_ZeroValueIsNull(t *testing.T) {
	var v Value
	require.Equal(t, KindNull, v.Kind())
	require.True(t, v.IsNull())
	require.True(t, v.IsScalar())
	require.Equal(t, "null", v.JSONString())
}

func TestValue_Constructors(t *testing.T) {
	v := Object(
		Member{Key: "ok", Value: Bool(true)},
		Member{Key: "n", Value: Number("1.25")},
		Member{Key: "s", Value: String("hi")},
		Member{Key: "list", Value: Array(Null(), Bool(false))},
	)

	require.Equal(t, KindObject, v.Kind())
	require.Equal(t, 4, v.Len())
	require.False(t, v.IsScalar())
	require.Equal(t, `{"ok":true,"n":1.25,"s":"hi","list":[null,false]}`, v.JSONString())
}

func TestValue_Float64(t *testing.T) {
	v := Number("2.5")
	f, err := v.Float64()
	require.NoError(t, err)
	require.InDelta(t, 2.5, f, 1e-12)
}

func TestValue_Iterators(t *testing.T) {
	arr := Array(Number("1"), Number("2"), Number("3"))
	var elems []string
	for i, e := range arr.Items() {
		require.Equal(t, len(elems), i)
		elems = append(elems, e.Text())
	}
	require.Equal(t, []string{"1", "2", "3"}, elems)

	obj := Object(
		Member{Key: "a", Value: Number("1")},
		Member{Key: "b", Value: Number("2")},
	)
	var keys []string
	for k := range obj.Fields() {
		keys = append(keys, k)
	}
	require.Equal(t, []string{"a", "b"}, keys)
}

func TestValue_AppendJSONEscaping(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "abc", want: `"abc"`},
		{name: "quote and backslash", in: `a"b\c`, want: `"a\"b\\c"`},
		{name: "newline and tab", in: "a\nb\tc", want: `"a\nb\tc"`},
		{name: "control char", in: "a\x01b", want: `"a\u0001b"`},
		{name: "utf8 passthrough", in: "héllo", want: `"héllo"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := String(tt.in)
			got := string(v.AppendJSON(nil))
			require.Equal(t, tt.want, got)

			// escaped output must parse back to the original text
			back, err := Parse([]byte(got))
			require.NoError(t, err)
			require.Equal(t, tt.in, back.Text())
		})
	}
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "null", KindNull.String())
	require.Equal(t, "bool", KindBool.String())
	require.Equal(t, "number", KindNumber.String())
	require.Equal(t, "string", KindString.String())
	require.Equal(t, "array", KindArray.String())
	require.Equal(t, "object", KindObject.String())
}
