package fedreg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAuthority(t *testing.T) {
	xml := `<RULE>
		<PREAMB><AGENCY>Test Agency</AGENCY></PREAMB>
		<AUTH>
			<HD SOURCE="HED">Authority:</HD>
			<P>5 U.S.C. 552; 42 U.S.C. 7401; 42 U.S.C. 7601</P>
		</AUTH>
	</RULE>`

	citations, err := parseAuthority([]byte(xml))
	require.NoError(t, err)
	assert.Equal(t, []string{"5 U.S.C. 552", "42 U.S.C. 7401", "42 U.S.C. 7601"}, citations)
}

func TestParseAuthority_MultipleBlocks(t *testing.T) {
	xml := `<RULE>
		<AUTH><P>5 U.S.C. 552</P></AUTH>
		<AUTH><P> 42 U.S.C. 7401 ; </P></AUTH>
	</RULE>`

	citations, err := parseAuthority([]byte(xml))
	require.NoError(t, err)
	assert.Equal(t, []string{"5 U.S.C. 552", "42 U.S.C. 7401"}, citations)
}

func TestParseAuthority_IgnoresParagraphsOutsideAuth(t *testing.T) {
	xml := `<RULE>
		<PREAMB><P>Some preamble; not a citation</P></PREAMB>
		<AUTH><P>5 U.S.C. 552</P></AUTH>
	</RULE>`

	citations, err := parseAuthority([]byte(xml))
	require.NoError(t, err)
	assert.Equal(t, []string{"5 U.S.C. 552"}, citations)
}

func TestParseAuthority_NoAuthBlock(t *testing.T) {
	citations, err := parseAuthority([]byte(`<RULE><P>text</P></RULE>`))
	require.NoError(t, err)
	assert.Empty(t, citations)
}
