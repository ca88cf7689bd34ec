package webhook

import "fleet/internal/models"

// Фиксированная проекция устройства для получателя webhook-а. Ключи name,
// manufacture, ipaddress берутся из fields; отсутствующие сериализуются
// пустыми, без ошибки.
func devicePayload(d *models.Device) map[string]string {
	typeName := ""
	if d.Type != nil {
		typeName = d.Type.Name
	}
	return map[string]string{
		"id":          d.SerialNumber,
		"name":        d.FieldString("name"),
		"type":        typeName,
		"manufacture": d.FieldString("manufacture"),
		"ipaddress":   d.FieldString("ipaddress"),
	}
}

// У шлюза схемы нет — проекция его собственных колонок, зеркально девайсной.
func gatewayPayload(g *models.Gateway) map[string]string {
	return map[string]string{
		"id":    g.SerialNumber,
		"name":  g.Name,
		"notes": g.Notes,
	}
}
