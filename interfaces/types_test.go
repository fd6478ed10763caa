package interfaces

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCertificateHash_Deterministic(t *testing.T) {
	cert := Certificate{
		Event:            "Rise Hackathon 2025",
		Organizer:        "University Institute of Technology",
		Date:             "2025-09-16",
		RecipientName:    "Ada Lovelace",
		RecipientAddress: "73H6VSES3MVAFPRS5IFQFDHMVIEBVEN7PEZ2A7USKWO7VTV5QT7S7GNYCU",
	}

	first := cert.Hash()
	second := cert.Hash()
	assert.True(t, first.Equal(second), "same fields must yield the same digest")

	// The canonical format is field values joined by "|" in declaration order.
	expected := sha256.Sum256([]byte(
		"Rise Hackathon 2025|University Institute of Technology|2025-09-16|Ada Lovelace|73H6VSES3MVAFPRS5IFQFDHMVIEBVEN7PEZ2A7USKWO7VTV5QT7S7GNYCU"))
	assert.Equal(t, CertificateHash(expected), first)
}

func TestCertificateHash_FieldSensitivity(t *testing.T) {
	base := Certificate{
		Event:            "Rise Hackathon 2025",
		Organizer:        "University Institute of Technology",
		Date:             "2025-09-16",
		RecipientName:    "Ada Lovelace",
		RecipientAddress: "ADDR",
	}

	variants := []Certificate{
		{Event: "Rise Hackathon 2026", Organizer: base.Organizer, Date: base.Date, RecipientName: base.RecipientName, RecipientAddress: base.RecipientAddress},
		{Event: base.Event, Organizer: "Someone Else", Date: base.Date, RecipientName: base.RecipientName, RecipientAddress: base.RecipientAddress},
		{Event: base.Event, Organizer: base.Organizer, Date: "2025-09-17", RecipientName: base.RecipientName, RecipientAddress: base.RecipientAddress},
		{Event: base.Event, Organizer: base.Organizer, Date: base.Date, RecipientName: "Grace Hopper", RecipientAddress: base.RecipientAddress},
		{Event: base.Event, Organizer: base.Organizer, Date: base.Date, RecipientName: base.RecipientName, RecipientAddress: "OTHER"},
	}

	baseHash := base.Hash()
	for _, v := range variants {
		assert.NotEqual(t, baseHash, v.Hash(), "changing any field must change the digest")
	}
}

func TestCertificateHash_HexRoundTrip(t *testing.T) {
	hash := Certificate{Event: "e", Organizer: "o", Date: "d", RecipientName: "n", RecipientAddress: "a"}.Hash()

	parsed, err := NewCertificateHashFromHex(hash.String())
	require.NoError(t, err)
	assert.True(t, hash.Equal(parsed))

	parsed, err = NewCertificateHashFromHex("0x" + hash.String())
	require.NoError(t, err)
	assert.True(t, hash.Equal(parsed))

	_, err = NewCertificateHashFromHex("abcd")
	assert.Error(t, err)

	_, err = NewCertificateHashFromBytes([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestOwnerIdentity_Sentinel(t *testing.T) {
	assert.True(t, NoOwner.IsAbsent())
	assert.True(t, OwnerIdentity(nil).IsAbsent())
	assert.False(t, OwnerIdentity([]byte{0}).IsAbsent(), "a stored zero byte is a real owner, not the sentinel")

	a := OwnerIdentity([]byte("owner-a"))
	b := OwnerIdentity([]byte("owner-b"))
	assert.True(t, a.Equal(OwnerIdentity([]byte("owner-a"))))
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(NoOwner))
}
