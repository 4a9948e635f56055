package entity

import "testing"

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		bucket string
		want   string
	}{
		{"absolute with bucket", "http://host:9000/pet-photos/abc.jpg", "pet-photos", "/abc.jpg"},
		{"https absolute", "https://cdn.example.com/pet-photos/abc.png", "pet-photos", "/abc.png"},
		{"already relative", "/abc.jpg", "pet-photos", "/abc.jpg"},
		{"relative with bucket", "/pet-photos/abc.jpg", "pet-photos", "/abc.jpg"},
		{"no leading slash", "abc.jpg", "pet-photos", "/abc.jpg"},
		{"other bucket untouched", "http://host:9000/other/abc.jpg", "pet-photos", "/other/abc.jpg"},
		{"bucket-like prefix", "http://host/pet-photos-old/abc.jpg", "pet-photos", "/pet-photos-old/abc.jpg"},
		{"escaped path", "http://host/pet-photos/my%20cat.jpg", "pet-photos", "/my cat.jpg"},
		{"empty", "", "pet-photos", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeURL(tc.raw, tc.bucket)
			if got != tc.want {
				t.Fatalf("NormalizeURL(%q, %q) = %q, want %q", tc.raw, tc.bucket, got, tc.want)
			}
			if again := NormalizeURL(got, tc.bucket); again != got {
				t.Fatalf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestPhotoNormalize(t *testing.T) {
	p := Photo{Bucket: "pet-photos", URL: "http://minio:9000/pet-photos/1.jpg"}
	p.Normalize()
	if p.URL != "/1.jpg" {
		t.Fatalf("expected /1.jpg, got %q", p.URL)
	}
}
