package sandbox

import "testing"

func TestAddressSpaceBytes(t *testing.T) {
	l := Limits{MemoryMiB: 512}
	if got, want := l.AddressSpaceBytes(), uint64(512)<<20; got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}

func TestEffectiveCPUSeconds_ClampsToHardCeiling(t *testing.T) {
	l := Limits{CPUSeconds: 10000}
	if got := l.EffectiveCPUSeconds(); got != HardCPUCeilingSeconds {
		t.Fatalf("got %d, want %d", got, HardCPUCeilingSeconds)
	}
}

func TestEffectiveCPUSeconds_UnsetUsesHardCeiling(t *testing.T) {
	l := Limits{}
	if got := l.EffectiveCPUSeconds(); got != HardCPUCeilingSeconds {
		t.Fatalf("got %d, want %d", got, HardCPUCeilingSeconds)
	}
}

func TestEffectiveFDCount_DefaultsWhenUnset(t *testing.T) {
	l := Limits{}
	if got := l.EffectiveFDCount(); got != DefaultFDLimit {
		t.Fatalf("got %d, want %d", got, DefaultFDLimit)
	}
}

func TestEffectiveFDCount_HonorsExplicitValue(t *testing.T) {
	l := Limits{FDCount: 20}
	if got := l.EffectiveFDCount(); got != 20 {
		t.Fatalf("got %d, want 20", got)
	}
}
