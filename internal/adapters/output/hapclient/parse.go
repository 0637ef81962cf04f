package hapclient

import (
	"hap-gsh-bridge/internal/domain/hap"
	"hap-gsh-bridge/internal/domain/model"
)

type accessoriesResponse struct {
	Accessories []accessoryJSON `json:"accessories"`
}

type accessoryJSON struct {
	Aid      int           `json:"aid"`
	Services []serviceJSON `json:"services"`
}

type serviceJSON struct {
	Iid             int                  `json:"iid"`
	Type            string               `json:"type"`
	Characteristics []characteristicJSON `json:"characteristics"`
}

type characteristicJSON struct {
	Iid         int         `json:"iid"`
	Type        string      `json:"type"`
	Value       interface{} `json:"value"`
	Description string      `json:"description"`
	Perms       []string    `json:"perms"`
	Format      string      `json:"format"`
	Unit        string      `json:"unit"`
	MinValue    *float64    `json:"minValue"`
	MaxValue    *float64    `json:"maxValue"`
	MinStep     *float64    `json:"minStep"`
}

type characteristicsBody struct {
	Characteristics []characteristicValue `json:"characteristics"`
}

type characteristicValue struct {
	Aid    int         `json:"aid"`
	Iid    int         `json:"iid"`
	Value  interface{} `json:"value"`
	Status int         `json:"status,omitempty"`
}

func parseAccessories(body accessoriesResponse, inst model.Instance, io model.CharacteristicIO) []*model.Service {
	var out []*model.Service
	for _, acc := range body.Accessories {
		info := accessoryInformation(acc)
		for _, s := range acc.Services {
			name, known := hap.ServiceName(s.Type)
			if known && name == hap.ServiceAccessoryInformation {
				continue
			}
			if !known {
				name = hap.LongUUID(s.Type)
			}

			svc := &model.Service{
				Aid:                  acc.Aid,
				Iid:                  s.Iid,
				UUID:                 hap.LongUUID(s.Type),
				Type:                 name,
				AccessoryInformation: info,
				Instance:             inst,
			}
			for _, cj := range s.Characteristics {
				ch := newCharacteristic(acc.Aid, cj)
				ch.Bind(io)
				svc.Characteristics = append(svc.Characteristics, ch)
			}
			svc.ServiceName = serviceName(svc)
			svc.UniqueID = model.ComputeUniqueID(inst.Username, svc.Aid, svc.Iid, svc.Type)
			out = append(out, svc)
		}
	}
	return out
}

func newCharacteristic(aid int, cj characteristicJSON) *model.Characteristic {
	ch := &model.Characteristic{
		Aid:         aid,
		Iid:         cj.Iid,
		UUID:        hap.LongUUID(cj.Type),
		Description: cj.Description,
		Value:       cj.Value,
		Format:      cj.Format,
		Unit:        cj.Unit,
		Perms:       cj.Perms,
	}
	if name, ok := hap.CharacteristicName(cj.Type); ok {
		ch.Type = name
	} else {
		ch.Type = ch.UUID
	}
	if cj.MinValue != nil {
		ch.MinValue = *cj.MinValue
	}
	if cj.MaxValue != nil {
		ch.MaxValue = *cj.MaxValue
	}
	if cj.MinStep != nil {
		ch.MinStep = *cj.MinStep
	}
	for _, p := range cj.Perms {
		switch p {
		case "pr":
			ch.CanRead = true
		case "pw":
			ch.CanWrite = true
		case "ev":
			ch.Ev = true
		}
	}
	return ch
}

// accessoryInformation collects the non-empty values of the
// AccessoryInformation service keyed by description.
func accessoryInformation(acc accessoryJSON) map[string]string {
	info := map[string]string{}
	for _, s := range acc.Services {
		if name, ok := hap.ServiceName(s.Type); !ok || name != hap.ServiceAccessoryInformation {
			continue
		}
		for _, cj := range s.Characteristics {
			str, ok := cj.Value.(string)
			if !ok || str == "" {
				continue
			}
			key := cj.Description
			if key == "" {
				key, _ = hap.CharacteristicName(cj.Type)
			}
			if key != "" {
				info[key] = str
			}
		}
	}
	return info
}

// serviceName prefers ConfiguredName, then the service's own Name, then the
// accessory name.
func serviceName(svc *model.Service) string {
	for _, t := range []string{hap.ConfiguredName, hap.Name} {
		if c := svc.Characteristic(t); c != nil {
			if s, ok := c.Value.(string); ok && s != "" {
				return s
			}
		}
	}
	if n := svc.Info(model.InfoName); n != "" {
		return n
	}
	return svc.Type
}
