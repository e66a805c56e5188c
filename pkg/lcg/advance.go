package lcg

// MaxPowerBits bounds the number of squarings performed by SeedAt. It covers
// every exponent representable in an int64.
const MaxPowerBits = 100

// SeedAt returns the seed reached after k steps of the generator with
// multiplier a, starting from seed, without generating the intermediate
// values: seed * a^k (mod 2^46).
//
// SeedAt panics if k < 0.
func SeedAt(seed, a float64, k int64) float64 {
	if k < 0 {
		panic("lcg: negative exponent")
	}

	x, p := seed, a
	for i := 0; i < MaxPowerBits && k != 0; i++ {
		if k&1 == 1 {
			Step(&x, p)
		}
		k >>= 1
		if k == 0 {
			break
		}
		Step(&p, p)
	}
	return x
}

// Power returns a^n (mod 2^46).
func Power(a float64, n int64) float64 {
	return SeedAt(1, a, n)
}

// BatchMultiplier returns a^(2^(batchExponent+1)) (mod 2^46), the multiplier
// that skips over one batch of 2^batchExponent pairs.
func BatchMultiplier(a float64, batchExponent uint) float64 {
	an := a
	for i := uint(0); i <= batchExponent; i++ {
		Step(&an, an)
	}
	return an
}
