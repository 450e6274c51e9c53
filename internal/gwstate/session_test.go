package gwstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession_ReadyToLoginRequiresNickAndIdent(t *testing.T) {
	s := New()
	assert.False(t, s.ReadyToLogin())

	s.Nick = "alice"
	assert.False(t, s.ReadyToLogin())

	s.Ident = "alice"
	assert.True(t, s.ReadyToLogin())

	s.MarkLoginSent()
	assert.False(t, s.ReadyToLogin())
}

func TestSession_AtMostOneOutstandingEnquiry(t *testing.T) {
	s := New()
	assert.Equal(t, EnquiryNone, s.Enquiry().Kind)

	err := s.BeginEnquiry(EnquiryWhois, "bob", "")
	assert.NoError(t, err)
	assert.Equal(t, EnquiryWhois, s.Enquiry().Kind)

	err = s.BeginEnquiry(EnquiryList, "", "")
	assert.ErrorIs(t, err, ErrEnquiryInFlight)
	assert.Equal(t, EnquiryWhois, s.Enquiry().Kind)

	s.EndEnquiry()
	assert.Equal(t, EnquiryNone, s.Enquiry().Kind)

	err = s.BeginEnquiry(EnquiryList, "", "")
	assert.NoError(t, err)
}

func TestEnquiryKind_String(t *testing.T) {
	assert.Equal(t, "whois", EnquiryWhois.String())
	assert.Equal(t, "none", EnquiryNone.String())
}
