package fpo

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestReadWorkbook(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Name", "District", "State", "Latitude", "Longitude"},
		{"Majha Farmers Producer Organization", "Amritsar", "Punjab", 31.6340, 74.8723},
		{"No State Collective", "Somewhere", "", 30.0, 75.0},
		{"Unlocated Producer Company", "Moga", "Punjab", "n/a", ""},
	})

	entries, err := ReadWorkbook(buf)
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2 (stateless row dropped)", len(entries))
	}
	first := entries[0]
	if first.Name != "Majha Farmers Producer Organization" || first.District != "Amritsar" || first.State != "Punjab" {
		t.Errorf("entry = %+v", first)
	}
	if first.Point.Lat != 31.6340 || first.Point.Lon != 74.8723 {
		t.Errorf("point = %+v", first.Point)
	}
	// Bad coordinates zero out but the entry stays for by-state use.
	if !entries[1].Point.IsZero() {
		t.Errorf("unlocated entry has point %+v, want zero", entries[1].Point)
	}
}

func TestReadWorkbookRequiresNameColumn(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"District", "State"},
		{"Amritsar", "Punjab"},
	})
	if _, err := ReadWorkbook(buf); err == nil {
		t.Fatal("ReadWorkbook accepted a workbook without a name column")
	}
}

type fakeObjectGetter struct {
	bucket string
	key    string
	body   []byte
	err    error
}

func (f *fakeObjectGetter) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = *params.Bucket
	f.key = *params.Key
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.body))}, nil
}

func TestS3SourceLoad(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Name", "District", "State", "Lat", "Lon"},
		{"Malwa FPO", "Bathinda", "Punjab", 30.2118, 74.9455},
	})
	getter := &fakeObjectGetter{body: buf.Bytes()}
	src := NewS3Source(WithS3Bucket("datasets"), WithS3Key("fpo/directory.xlsx"), WithS3Client(getter))

	entries, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if getter.bucket != "datasets" || getter.key != "fpo/directory.xlsx" {
		t.Errorf("requested s3://%s/%s", getter.bucket, getter.key)
	}
	if len(entries) != 1 || entries[0].Name != "Malwa FPO" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestS3SourceLoadErrors(t *testing.T) {
	src := NewS3Source(WithS3Bucket("datasets"), WithS3Key("missing.xlsx"),
		WithS3Client(&fakeObjectGetter{err: errors.New("no such key")}))
	if _, err := src.Load(context.Background()); err == nil {
		t.Fatal("Load swallowed the S3 error")
	}
	if _, err := NewS3Source().Load(context.Background()); err == nil {
		t.Fatal("Load accepted a source without a client")
	}
}
