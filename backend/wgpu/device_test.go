package wgpu

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/viewer"
)

// mockProvider implements gpucontext.DeviceProvider without HAL access.
type mockProvider struct{}

func (m *mockProvider) Device() gpucontext.Device             { return nil }
func (m *mockProvider) Queue() gpucontext.Queue               { return nil }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return nil }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (m *mockProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }

// halMockProvider additionally exposes HAL handles, possibly of the wrong
// dynamic type.
type halMockProvider struct {
	mockProvider
	halDevice any
	halQueue  any
}

func (m *halMockProvider) HalDevice() any { return m.halDevice }
func (m *halMockProvider) HalQueue() any  { return m.halQueue }

func TestFromProvider_NoHALAccess(t *testing.T) {
	if _, err := FromProvider(&mockProvider{}); err == nil {
		t.Fatal("FromProvider should fail for a provider without HAL handles")
	}
}

func TestFromProvider_WrongHandleTypes(t *testing.T) {
	cases := []struct {
		name     string
		provider *halMockProvider
	}{
		{"nil handles", &halMockProvider{}},
		{"device wrong type", &halMockProvider{halDevice: 42}},
		{"queue wrong type", &halMockProvider{halDevice: hal.Device(nil), halQueue: "queue"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FromProvider(tc.provider); err == nil {
				t.Fatal("FromProvider should reject the provider")
			}
		})
	}
}

func TestDeviceQueue_OnlyFamilyZero(t *testing.T) {
	d := &Device{}

	if _, err := d.Queue(1); err == nil {
		t.Fatal("Queue(1) should fail; HAL exposes a single queue")
	}

	q, err := d.Queue(0)
	if err != nil {
		t.Fatalf("Queue(0) failed: %v", err)
	}
	if q == nil {
		t.Fatal("Queue(0) returned nil")
	}
}

func TestHALCommandBuffers_RejectsForeignTypes(t *testing.T) {
	if _, err := halCommandBuffers([]viewer.CommandBuffer{"not a command buffer"}); err == nil {
		t.Fatal("halCommandBuffers should reject non-HAL buffers")
	}
}

func TestHALCommandBuffers_Empty(t *testing.T) {
	out, err := halCommandBuffers(nil)
	if err != nil {
		t.Fatalf("halCommandBuffers(nil) failed: %v", err)
	}
	if out != nil {
		t.Fatalf("halCommandBuffers(nil) = %v, want nil", out)
	}
}

func TestAsSemaphore_RejectsForeignTypes(t *testing.T) {
	if _, err := asSemaphore("token"); err == nil {
		t.Fatal("asSemaphore should reject semaphores from other backends")
	}
}

func TestSemaphore_PendingAfterSignal(t *testing.T) {
	s := &Semaphore{}

	if _, ok := s.pending(); ok {
		t.Fatal("fresh semaphore should have no pending value")
	}

	s.signaled(7)
	value, ok := s.pending()
	if !ok || value != 7 {
		t.Fatalf("pending() = %d, %v; want 7, true", value, ok)
	}
}

func TestCompileContext_EmptyDispatchAndWait(t *testing.T) {
	cc := &CompileContext{}

	if err := cc.Dispatch(); err != nil {
		t.Fatalf("Dispatch with no transfers failed: %v", err)
	}
	if err := cc.Wait(); err != nil {
		t.Fatalf("Wait with no dispatch failed: %v", err)
	}
}

func TestCompileContext_TransferConversionErrorSurfacesOnDispatch(t *testing.T) {
	cc := &CompileContext{}
	cc.Transfer(123)

	if err := cc.Dispatch(); err == nil {
		t.Fatal("Dispatch should surface the Transfer conversion error")
	}
}

func TestCompileContext_ReserveRetainsRequirements(t *testing.T) {
	cc := &CompileContext{}
	req := viewer.ResourceRequirements{
		MaxSets:   4,
		PoolSizes: map[viewer.DescriptorType]uint32{1: 8},
	}
	cc.Reserve(req)

	got := cc.Requirements()
	if got.MaxSets != 4 || got.PoolSizes[1] != 8 {
		t.Fatalf("Requirements() = %+v, want %+v", got, req)
	}
}
