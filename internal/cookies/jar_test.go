package cookies

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJarApplyAndRender(t *testing.T) {
	jar := NewJar()
	jar.Apply([]string{
		"csrftoken=abc123; Path=/; Secure",
		"sessionid=xyz789; HttpOnly; Max-Age=1209600",
	})

	value, ok := jar.Get("csrftoken")
	require.True(t, ok)
	assert.Equal(t, "abc123", value)

	assert.Equal(t, "csrftoken=abc123; sessionid=xyz789", jar.Render())
	assert.Equal(t, 2, jar.Len())
}

func TestJarLastWriteWins(t *testing.T) {
	jar := NewJar()
	jar.Apply([]string{"csrftoken=first"})
	jar.Apply([]string{"csrftoken=second; Path=/"})

	value, _ := jar.Get("csrftoken")
	assert.Equal(t, "second", value)
	// Insertion order is preserved across overwrites
	jar.Apply([]string{"sessionid=s1"})
	assert.Equal(t, "csrftoken=second; sessionid=s1", jar.Render())
}

func TestJarIgnoresMalformedLines(t *testing.T) {
	jar := NewJar()
	jar.Apply([]string{
		"",
		"no-equals-sign",
		"=valuewithoutname",
		"  =  ; Path=/",
		"good=yes",
	})
	assert.Equal(t, 1, jar.Len())
	assert.Equal(t, "good=yes", jar.Render())
}

func TestJarApplyResponse(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Add("Set-Cookie", "csrftoken=tok; Path=/")
	resp.Header.Add("Set-Cookie", "sessionid=sess; HttpOnly")

	jar := NewJar()
	jar.ApplyResponse(resp)
	assert.Equal(t, "csrftoken=tok; sessionid=sess", jar.Render())
}

func TestJarGetAbsent(t *testing.T) {
	jar := NewJar()
	_, ok := jar.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, "", jar.Render())
}
