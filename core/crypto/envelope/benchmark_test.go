package envelope

import (
	"context"
	"testing"
)

func BenchmarkEncrypt(b *testing.B) {
	for _, size := range []int{1 << 10, 1 << 20} {
		b.Run(sizeName(size), func(b *testing.B) {
			codec := New(testKeys(b))
			ctx := context.Background()
			plaintext := make([]byte, size)

			b.SetBytes(int64(size))
			b.ReportAllocs()
			for b.Loop() {
				if _, err := codec.Encrypt(ctx, plaintext); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecrypt(b *testing.B) {
	for _, size := range []int{1 << 10, 1 << 20} {
		b.Run(sizeName(size), func(b *testing.B) {
			codec := New(testKeys(b))
			ctx := context.Background()
			p, err := codec.Encrypt(ctx, make([]byte, size))
			if err != nil {
				b.Fatal(err)
			}

			b.SetBytes(int64(size))
			b.ReportAllocs()
			for b.Loop() {
				if _, err := codec.Decrypt(ctx, p.Ciphertext, p.AuthTag, p.WrappedKey); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func sizeName(n int) string {
	if n >= 1<<20 {
		return "1MiB"
	}
	return "1KiB"
}
