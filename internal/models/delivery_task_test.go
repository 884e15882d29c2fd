package models

import "testing"

func TestTaskMetaScanNilValue(t *testing.T) {
	var meta TaskMeta
	if err := meta.Scan(nil); err != nil {
		t.Fatalf("scan nil failed: %v", err)
	}
	if meta.Version != TaskMetaVersion {
		t.Fatalf("expected version %d, got: %d", TaskMetaVersion, meta.Version)
	}
	if len(meta.BarrelCodes) != 0 || meta.SellRequestID != nil {
		t.Fatalf("expected empty meta, got: %+v", meta)
	}
}

func TestTaskMetaValueScanRoundTrip(t *testing.T) {
	requestID := uint(42)
	meta := TaskMeta{
		Version:       TaskMetaVersion,
		BarrelCodes:   StringArray{"BHFP1", "GTX10"},
		SellRequestID: &requestID,
	}

	value, err := meta.Value()
	if err != nil {
		t.Fatalf("value failed: %v", err)
	}

	var decoded TaskMeta
	if err := decoded.Scan(value); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if decoded.Version != TaskMetaVersion {
		t.Fatalf("expected version %d, got: %d", TaskMetaVersion, decoded.Version)
	}
	if len(decoded.BarrelCodes) != 2 || decoded.BarrelCodes[0] != "BHFP1" {
		t.Fatalf("unexpected barrel codes: %v", decoded.BarrelCodes)
	}
	if decoded.SellRequestID == nil || *decoded.SellRequestID != 42 {
		t.Fatalf("unexpected sell request id: %v", decoded.SellRequestID)
	}
}

func TestTaskMetaScanStringPayload(t *testing.T) {
	var meta TaskMeta
	if err := meta.Scan(`{"version":1,"barrel_codes":["BHFP2"]}`); err != nil {
		t.Fatalf("scan string failed: %v", err)
	}
	if len(meta.BarrelCodes) != 1 || meta.BarrelCodes[0] != "BHFP2" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}
