package shamir

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/sharekit/chacharand"
	"github.com/vitalvas/sharekit/xlogger"
)

// seededRand returns a deterministic generator so two schemes draw the
// same coefficients.
func seededRand(t testing.TB, seed byte) *chacharand.Reader {
	t.Helper()

	rng, err := chacharand.NewFromSource(bytes.NewReader(bytes.Repeat([]byte{seed}, 64)))
	require.NoError(t, err)

	return rng
}

func newScheme(t testing.TB, total, threshold int, opts ...Option) *Scheme {
	t.Helper()

	s, err := New(total, threshold, opts...)
	require.NoError(t, err)

	return s
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		threshold int
		config    *Config
		wantErr   error
	}{
		{name: "valid 3-of-5", total: 5, threshold: 3},
		{name: "valid 1-of-1", total: 1, threshold: 1},
		{name: "valid 255-of-255", total: 255, threshold: 255},
		{name: "zero total", total: 0, threshold: 0, wantErr: ErrInvalidShareCount},
		{name: "zero total checked before threshold", total: 0, threshold: 3, wantErr: ErrInvalidShareCount},
		{name: "total above 255", total: 256, threshold: 2, wantErr: ErrInvalidShareCount},
		{name: "zero threshold", total: 5, threshold: 0, wantErr: ErrInvalidThreshold},
		{name: "negative threshold", total: 5, threshold: -1, wantErr: ErrInvalidThreshold},
		{name: "threshold above total", total: 3, threshold: 5, wantErr: ErrThresholdTooLarge},
		{
			name:      "invalid chunk size",
			total:     5,
			threshold: 3,
			config:    &Config{ChunkSize: 0, IntegrityCheck: true},
			wantErr:   ErrInvalidConfig,
		},
		{
			name:      "unknown mode",
			total:     5,
			threshold: 3,
			config:    &Config{ChunkSize: 16, Mode: "turbo"},
			wantErr:   ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.config != nil {
				opts = append(opts, WithConfig(*tt.config))
			}

			s, err := New(tt.total, tt.threshold, opts...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.total, s.TotalShares())
			assert.Equal(t, tt.threshold, s.Threshold())
			assert.Equal(t, DefaultConfig(), s.Config())
		})
	}
}

func TestThresholdTooLargeError(t *testing.T) {
	_, err := New(3, 5)

	var tooLarge *ThresholdTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, 5, tooLarge.Threshold)
	assert.Equal(t, 3, tooLarge.TotalShares)
	assert.Contains(t, err.Error(), "threshold 5 exceeds total shares 3")
}

func TestSplitAndReconstruct(t *testing.T) {
	s := newScheme(t, 5, 3)
	secret := []byte("Hello, World!")

	shares, err := s.Split(secret)
	require.NoError(t, err)
	require.Len(t, shares, 5)

	for i, share := range shares {
		assert.Equal(t, uint8(i+1), share.Index)
		assert.Equal(t, uint8(3), share.Threshold)
		assert.Equal(t, uint8(5), share.TotalShares)
		assert.True(t, share.IntegrityCheck)
		assert.False(t, share.Compression)
		assert.Len(t, share.Data, HashSize+len(secret))
	}

	t.Run("first three", func(t *testing.T) {
		recovered, err := Reconstruct(shares[0:3])
		require.NoError(t, err)
		assert.Equal(t, secret, recovered)
	})

	t.Run("last four", func(t *testing.T) {
		recovered, err := Reconstruct(shares[1:5])
		require.NoError(t, err)
		assert.Equal(t, secret, recovered)
	})

	t.Run("two shares", func(t *testing.T) {
		_, err := Reconstruct(shares[0:2])
		require.ErrorIs(t, err, ErrInsufficientShares)

		var insufficient *InsufficientSharesError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 3, insufficient.Needed)
		assert.Equal(t, 2, insufficient.Got)
	})
}

func TestSplitAndReconstructConfigs(t *testing.T) {
	secrets := map[string][]byte{
		"empty":      {},
		"single":     {0x42},
		"zeros":      make([]byte, 64),
		"text":       []byte("the quick brown fox jumps over the lazy dog"),
		"repetitive": bytes.Repeat([]byte("abcd"), 1000),
	}

	configs := map[string]Config{
		"default":           DefaultConfig(),
		"no integrity":      {ChunkSize: 16, Mode: ModeSequential},
		"compression":       {ChunkSize: 16, Mode: ModeSequential, Compression: true, IntegrityCheck: true},
		"compression only":  {ChunkSize: 16, Mode: ModeSequential, Compression: true},
		"parallel":          {ChunkSize: 16, Mode: ModeParallel, IntegrityCheck: true},
		"parallel and zstd": {ChunkSize: 16, Mode: ModeParallel, Compression: true, IntegrityCheck: true},
	}

	schemes := []struct{ total, threshold int }{
		{1, 1},
		{3, 2},
		{5, 3},
		{10, 10},
	}

	for cname, config := range configs {
		for sname, secret := range secrets {
			for _, p := range schemes {
				s := newScheme(t, p.total, p.threshold, WithConfig(config))

				shares, err := s.Split(secret)
				require.NoError(t, err, "%s/%s", cname, sname)

				recovered, err := Reconstruct(shares[:p.threshold])
				require.NoError(t, err, "%s/%s", cname, sname)
				assert.Equal(t, secret, recovered, "%s/%s", cname, sname)

				recovered, err = Reconstruct(shares[p.total-p.threshold:])
				require.NoError(t, err, "%s/%s", cname, sname)
				assert.Equal(t, secret, recovered, "%s/%s", cname, sname)
			}
		}
	}
}

func TestSplitCompressionShrinksShares(t *testing.T) {
	secret := bytes.Repeat([]byte("secret"), 1000)

	s := newScheme(t, 3, 2, WithConfig(Config{ChunkSize: 1024, Compression: true, IntegrityCheck: true}))
	shares, err := s.Split(secret)
	require.NoError(t, err)

	assert.True(t, shares[0].Compression)
	assert.Less(t, len(shares[0].Data), len(secret))
}

func TestSplitDrawsFreshCoefficients(t *testing.T) {
	s := newScheme(t, 3, 2)
	secret := []byte("same secret")

	first, err := s.Split(secret)
	require.NoError(t, err)
	second, err := s.Split(secret)
	require.NoError(t, err)

	assert.NotEqual(t, first[0].Data, second[0].Data)
}

func TestSplitDeterministicWithSeededRand(t *testing.T) {
	secret := []byte("deterministic")

	a := newScheme(t, 5, 3, WithRand(seededRand(t, 7)))
	b := newScheme(t, 5, 3, WithRand(seededRand(t, 7)))

	sharesA, err := a.Split(secret)
	require.NoError(t, err)
	sharesB, err := b.Split(secret)
	require.NoError(t, err)

	for i := range sharesA {
		assert.True(t, sharesA[i].Equal(sharesB[i]))
	}
}

func TestSplitParallelMatchesSequential(t *testing.T) {
	secret := bytes.Repeat([]byte{1, 2, 3, 4, 5}, 100)

	seq := newScheme(t, 20, 7, WithRand(seededRand(t, 9)))
	par := newScheme(t, 20, 7, WithRand(seededRand(t, 9)),
		WithConfig(Config{ChunkSize: 16, Mode: ModeParallel, IntegrityCheck: true}))

	sharesSeq, err := seq.Split(secret)
	require.NoError(t, err)
	sharesPar, err := par.Split(secret)
	require.NoError(t, err)

	assert.Equal(t, sharesSeq, sharesPar)
}

func TestSplitRandFailure(t *testing.T) {
	s := newScheme(t, 5, 3, WithRand(bytes.NewReader(nil)))

	_, err := s.Split([]byte("secret"))
	assert.ErrorIs(t, err, ErrIO)
}

func TestReconstructEverySubset(t *testing.T) {
	s := newScheme(t, 6, 3)
	secret := []byte("subset secret")

	shares, err := s.Split(secret)
	require.NoError(t, err)

	for i := 0; i < len(shares); i++ {
		for j := i + 1; j < len(shares); j++ {
			for k := j + 1; k < len(shares); k++ {
				subset := []Share{shares[k], shares[i], shares[j]}

				recovered, err := Reconstruct(subset)
				require.NoError(t, err)
				assert.Equal(t, secret, recovered)
			}
		}
	}
}

func TestReconstructErrors(t *testing.T) {
	s := newScheme(t, 5, 3)
	shares, err := s.Split([]byte("reconstruct errors"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		shares  func() []Share
		wantErr error
	}{
		{
			name:    "no shares",
			shares:  func() []Share { return nil },
			wantErr: ErrInsufficientShares,
		},
		{
			name:    "below threshold",
			shares:  func() []Share { return shares[:2] },
			wantErr: ErrInsufficientShares,
		},
		{
			name: "different lengths",
			shares: func() []Share {
				bad := shares[1].Clone()
				bad.Data = bad.Data[:len(bad.Data)-1]
				return []Share{shares[0], bad, shares[2]}
			},
			wantErr: ErrInconsistentShareLength,
		},
		{
			name: "different flags",
			shares: func() []Share {
				bad := shares[1].Clone()
				bad.Compression = true
				return []Share{shares[0], bad, shares[2]}
			},
			wantErr: ErrInconsistentShareLength,
		},
		{
			name:    "duplicate index",
			shares:  func() []Share { return []Share{shares[0], shares[1], shares[1]} },
			wantErr: ErrInvalidShareFormat,
		},
		{
			name: "zero index",
			shares: func() []Share {
				bad := shares[2].Clone()
				bad.Index = 0
				return []Share{shares[0], shares[1], bad}
			},
			wantErr: ErrInvalidShareFormat,
		},
		{
			name: "tampered data",
			shares: func() []Share {
				bad := shares[0].Clone()
				bad.Data[len(bad.Data)-1] ^= 0x01
				return []Share{bad, shares[1], shares[2]}
			},
			wantErr: ErrIntegrityCheckFailed,
		},
		{
			name: "tampered hash",
			shares: func() []Share {
				bad := shares[2].Clone()
				bad.Data[0] ^= 0x80
				return []Share{shares[0], shares[1], bad}
			},
			wantErr: ErrIntegrityCheckFailed,
		},
		{
			name: "share from another dealing",
			shares: func() []Share {
				other, err := s.Split([]byte("reconstruct errors"))
				require.NoError(t, err)
				return []Share{shares[0], shares[1], other[2]}
			},
			wantErr: ErrIntegrityCheckFailed,
		},
		{
			name: "shorter than hash",
			shares: func() []Share {
				out := make([]Share, 3)
				for i := range out {
					out[i] = shares[i].Clone()
					out[i].Data = out[i].Data[:HashSize-1]
				}
				return out
			},
			wantErr: ErrIntegrityCheckFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recovered, err := Reconstruct(tt.shares())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, recovered)
		})
	}
}

func TestReconstructNoIntegrityWrongShares(t *testing.T) {
	s := newScheme(t, 3, 2, WithConfig(Config{ChunkSize: 16}))
	secret := []byte("unchecked")

	shares, err := s.Split(secret)
	require.NoError(t, err)

	bad := shares[0].Clone()
	bad.Data[0] ^= 0xFF

	recovered, err := Reconstruct([]Share{bad, shares[1]})
	require.NoError(t, err)
	assert.NotEqual(t, secret, recovered)
}

func TestReconstructLargeSecretParallel(t *testing.T) {
	secret := make([]byte, parallelMinBytes*2+17)
	_, err := seededRand(t, 3).Read(secret)
	require.NoError(t, err)

	s := newScheme(t, 4, 3)
	shares, err := s.Split(secret)
	require.NoError(t, err)

	recovered, err := Reconstruct(shares[1:])
	require.NoError(t, err)
	assert.Equal(t, secret, recovered)
}

func TestReconstructDoesNotModifyShares(t *testing.T) {
	s := newScheme(t, 3, 2)
	shares, err := s.Split([]byte("keep"))
	require.NoError(t, err)

	before := []Share{shares[0].Clone(), shares[1].Clone()}

	_, err = Reconstruct(shares[:2])
	require.NoError(t, err)

	assert.Equal(t, before, shares[:2])
}

func BenchmarkSplit(b *testing.B) {
	s := newScheme(b, 5, 3)
	secret := make([]byte, 1024)

	b.ResetTimer()
	for range b.N {
		_, _ = s.Split(secret)
	}
}

func BenchmarkReconstruct(b *testing.B) {
	s := newScheme(b, 5, 3)
	shares, _ := s.Split(make([]byte, 1024))

	b.ResetTimer()
	for range b.N {
		_, _ = Reconstruct(shares[:3])
	}
}

func BenchmarkSplitLargeParallel(b *testing.B) {
	s := newScheme(b, 10, 5, WithConfig(Config{ChunkSize: DefaultChunkSize, Mode: ModeParallel, IntegrityCheck: true}))
	secret := make([]byte, 1<<20)

	b.ResetTimer()
	for range b.N {
		_, _ = s.Split(secret)
	}
}

func TestSchemeLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := xlogger.New(xlogger.Config{Level: "debug", LogType: "json", Output: &buf})

	s := newScheme(t, 3, 2, WithLogger(logger))
	secret := []byte("never logged")

	_, err := s.Split(secret)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"msg":"secret split"`)
	assert.Contains(t, buf.String(), `"shares":3`)
	assert.Contains(t, buf.String(), `"locked":`)
	assert.NotContains(t, buf.String(), string(secret))
}
