package binance

import "testing"

// go test -v --run TestSign
func TestSign(t *testing.T) {
	cases := []struct {
		name    string
		secret  string
		message string
		want    string
	}{
		{"short message", "key", "totally_a_message", "18a73b7dfd0523141e8d8efddb80e902e38471b53a49bb102d6c98fc7eb2566b"},
		{"quick brown fox", "key", "The quick brown fox jumps over the lazy dog", "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8"},
		{
			"binance docs example",
			"NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j",
			"symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559",
			"c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sign(tc.secret, tc.message); got != tc.want {
				t.Fatalf("Sign() = %s, want %s", got, tc.want)
			}
			if again := Sign(tc.secret, tc.message); again != tc.want {
				t.Fatalf("Sign() not deterministic: %s", again)
			}
		})
	}
}

func TestCredentialsStringHidesSecret(t *testing.T) {
	creds := NewCredentials("pub", "very-secret")
	if got := creds.String(); got != "Credentials{publicKey:pub, secretKey:***}" {
		t.Fatalf("String() = %q", got)
	}
	if creds.PublicKey() != "pub" {
		t.Fatalf("PublicKey() = %q, want pub", creds.PublicKey())
	}
}
