package imdevice

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// samplerTable holds one sampler per TextureSamplingFlags value. It is
// filled at device construction and never changes.
type samplerTable struct {
	samplers [samplingFlagCombinations]hal.Sampler
	descs    [samplingFlagCombinations]hal.SamplerDescriptor
}

// samplerDescriptor returns the sampler settings selected by flags.
func samplerDescriptor(flags TextureSamplingFlags) hal.SamplerDescriptor {
	addressU, addressV := gputypes.AddressModeClampToEdge, gputypes.AddressModeClampToEdge
	if flags&SamplingRepeatU != 0 {
		addressU = gputypes.AddressModeRepeat
	}
	if flags&SamplingRepeatV != 0 {
		addressV = gputypes.AddressModeRepeat
	}
	magFilter, minFilter := gputypes.FilterModeLinear, gputypes.FilterModeLinear
	if flags&SamplingNearestMag != 0 {
		magFilter = gputypes.FilterModeNearest
	}
	if flags&SamplingNearestMin != 0 {
		minFilter = gputypes.FilterModeNearest
	}
	return hal.SamplerDescriptor{
		Label:        fmt.Sprintf("sampler_%02d", uint8(flags)),
		AddressModeU: addressU,
		AddressModeV: addressV,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    magFilter,
		MinFilter:    minFilter,
		MipmapFilter: gputypes.FilterModeNearest,
	}
}

func newSamplerTable(device hal.Device) (*samplerTable, error) {
	t := &samplerTable{}
	for i := range t.samplers {
		t.descs[i] = samplerDescriptor(TextureSamplingFlags(i))
		s, err := device.CreateSampler(&t.descs[i])
		if err != nil {
			t.destroy(device)
			return nil, nativeErr("create sampler", err)
		}
		t.samplers[i] = s
	}
	return t, nil
}

func (t *samplerTable) get(flags TextureSamplingFlags) hal.Sampler {
	return t.samplers[flags&(samplingFlagCombinations-1)]
}

func (t *samplerTable) destroy(device hal.Device) {
	for i, s := range t.samplers {
		if s != nil {
			device.DestroySampler(s)
			t.samplers[i] = nil
		}
	}
}

// Sampler returns the sampler for flags. Every texture with the same flags
// shares it.
func (d *Device) Sampler(flags TextureSamplingFlags) hal.Sampler {
	return d.samplers.get(flags)
}
