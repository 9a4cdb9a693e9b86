package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rgehrsitz/persreport/internal/domain"
	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestMRLWriter_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMRLWriter().Write(&buf, buildTestResult()))

	newGoldie(t).Assert(t, "send2drs_split", buf.Bytes())
}

func TestMRLWriter_CorrectionGolden(t *testing.T) {
	result := buildTestResult()
	result.Params = domain.RunParameters{Correction: true}
	result.Output.Benefits = result.Output.Benefits[:1]
	result.Output.Contributions = nil
	result.Output.Summary.TotalCompensation = dec("4000")
	result.Output.Summary.TotalEmployeeAmount = dec("240")
	result.Output.Summary.TotalEmployerAmount = dec("400")
	result.Output.Summary.TotalHours = dec("64")
	result.Output.Summary.TotalRecords = 1

	w := &MRLWriter{LineEnding: "\n"}
	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf, result))

	newGoldie(t).Assert(t, "send2drs_correction", buf.Bytes())
}

func TestMRLFormatter_MatchesWriter(t *testing.T) {
	result := buildTestResult()

	var buf bytes.Buffer
	require.NoError(t, NewMRLWriter().Write(&buf, result))

	out, err := MRLFormatter{}.Format(result)
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), out)
	assert.Equal(t, "mrl", MRLFormatter{}.Name())

	lines := strings.Split(strings.TrimSuffix(string(out), "\r\n"), "\r\n")
	assert.Len(t, lines, 6, "summary, four benefit lines, one contribution line")
}

func TestMRLWriter_NilResult(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewMRLWriter().Write(&buf, nil))
	assert.Zero(t, buf.Len())
}

func TestBenefitLine_Layout(t *testing.T) {
	result := buildTestResult()
	line := BenefitLine(result, result.Output.Benefits[0])

	fields := strings.Split(line, ",")
	require.Len(t, fields, 17)
	assert.Equal(t, "8821  ", fields[1], "employer code is left-justified in six columns")
	assert.Equal(t, "+064.0", fields[11])
	assert.Equal(t, "+00.0", fields[12], "days worked is always zero")
	assert.Equal(t, "A   ", fields[16], "status carries three trailing spaces")
}

func TestContributionLine_Layout(t *testing.T) {
	result := buildTestResult()
	assert.Equal(t, "C,8821  ,202107,R,01,987654321,P,+0000150.00, ,WSIB,B", ContributionLine(result, result.Output.Contributions[0]))
}

func TestSignedFixed(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		width  int
		places int32
		want   string
	}{
		{"zero is positive", "0", 10, 2, "+0000000.00"},
		{"money", "6043.35", 10, 2, "+0006043.35"},
		{"negative money", "-477.42", 10, 2, "-0000477.42"},
		{"half to even down", "10.125", 10, 2, "+0000010.12"},
		{"half to even up", "10.135", 10, 2, "+0000010.14"},
		{"hours", "112", 5, 1, "+112.0"},
		{"hours half to even", "12.25", 5, 1, "+012.2"},
		{"summary hours", "56978.7", 11, 1, "+000056978.7"},
		{"summary money", "2875215.36", 12, 2, "+002875215.36"},
		{"wider than field", "123456789.5", 5, 1, "+123456789.5"},
		{"tiny negative keeps sign", "-0.001", 10, 2, "-0000000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, signedFixed(decimal.RequireFromString(tt.value), tt.width, tt.places))
		})
	}
}

func TestEmployerCodeAndTwoDigits(t *testing.T) {
	assert.Equal(t, "8821  ", employerCode(""))
	assert.Equal(t, "123456", employerCode("123456"))
	assert.Equal(t, "01", twoDigits("1"))
	assert.Equal(t, "02", twoDigits(" 02 "))
	assert.Equal(t, "00", twoDigits(""))
}
