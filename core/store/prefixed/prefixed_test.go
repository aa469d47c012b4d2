package prefixed

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/xcall/internal/testing/fake"
)

func TestSnapshot_Isolation(t *testing.T) {
	root := fake.NewSnapshot()

	alice := NewSnapshot("alice", root)
	bob := NewSnapshot("bob", root)

	require.NoError(t, alice.Set([]byte("key"), []byte("A")))
	require.NoError(t, bob.Set([]byte("key"), []byte("B")))

	value, err := alice.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("A"), value)

	value, err = NewReadable("bob", root).Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("B"), value)

	require.NoError(t, alice.Delete([]byte("key")))

	value, err = alice.Get([]byte("key"))
	require.NoError(t, err)
	require.Nil(t, value)

	value, err = bob.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("B"), value)
}

func TestNewPrefixedKey(t *testing.T) {
	require.Equal(t, []byte{2, 'a', 'b', 'c'}, NewPrefixedKey([]byte("ab"), []byte("c")))
	require.NotEqual(t,
		NewPrefixedKey([]byte("ab"), []byte("c")),
		NewPrefixedKey([]byte("a"), []byte("bc")))

	// The length of a long prefix must not wrap around.
	long := bytes.Repeat([]byte("x"), 70000)

	key := NewPrefixedKey(long, []byte("k"))
	require.Equal(t, []byte{0xf0, 0xa2, 0x04}, key[:3])
	require.Len(t, key, 3+70000+1)

	require.NotEqual(t,
		NewPrefixedKey(long[:65537], []byte("k")),
		NewPrefixedKey(long[:1], append(long[:65536:65536], 'k')))
}

func TestSnapshot_Errors(t *testing.T) {
	snap := NewSnapshot("alice", fake.NewBadSnapshot())

	_, err := snap.Get([]byte("key"))
	require.EqualError(t, err, fake.GetError().Error())

	err = snap.Set([]byte("key"), nil)
	require.EqualError(t, err, fake.GetError().Error())
}
