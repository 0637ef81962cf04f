package translator

import (
	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/domain/smarthome"
)

// baseSyncDevice builds the envelope shared by every device type. Callers
// layer their type, traits and attributes on top of it.
func baseSyncDevice(svc *model.Service, deviceType string, traits ...string) smarthome.SyncDevice {
	accessoryName := svc.Info(model.InfoName)

	defaultNames := make([]string, 0, 2)
	if svc.ServiceName != "" {
		defaultNames = append(defaultNames, svc.ServiceName)
	}
	if accessoryName != "" {
		defaultNames = append(defaultNames, accessoryName)
	}

	name := svc.ServiceName
	if name == "" {
		name = accessoryName
	}
	if name == "" {
		name = smarthome.MissingName
	}

	return smarthome.SyncDevice{
		ID:     svc.UniqueID,
		Type:   deviceType,
		Traits: traits,
		Name: smarthome.DeviceName{
			DefaultNames: defaultNames,
			Name:         name,
			Nicknames:    []string{},
		},
		WillReportState: true,
		DeviceInfo: smarthome.DeviceInfo{
			Manufacturer: svc.Info(model.InfoManufacturer),
			Model:        svc.Info(model.InfoModel),
			HwVersion:    svc.Info(model.InfoHardwareRevision),
			SwVersion:    svc.Info(model.InfoFirmwareRevision),
		},
		CustomData: smarthome.CustomData{
			Aid:               svc.Aid,
			Iid:               svc.Iid,
			InstanceUsername:  svc.Instance.Username,
			InstanceIPAddress: svc.Instance.IPAddress,
			InstancePort:      svc.Instance.Port,
		},
	}
}
