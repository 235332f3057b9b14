// internal/service/watering/domain/plant.go
package domain

// ProductTypePlant 是浇水调度唯一关心的商品类型。
const ProductTypePlant = "plant"

// Plant 是库存中的一条植物档案 (浇水调度视角的裁剪)。
type Plant struct {
	ID         string
	BusinessID string
	Name       string
	CommonName string
	// WaterDays 是商家配置的基础浇水间隔 (天)，0 表示未配置
	WaterDays int
	Location  *GPSCoordinates
	Schedule  *WateringSchedule
}

// DisplayName 返回用于提醒文案的名称。
func (p *Plant) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.CommonName != "" {
		return p.CommonName
	}
	return "A plant"
}

// ApplyDailyUpdate 对单株植物执行一次状态迁移，返回状态是否发生了变化。
// 迁移规则:
//  1. 没有 schedule -> 惰性初始化
//  2. 有降雨       -> 重置 (无论当天是否已更新)
//  3. 当天未更新   -> 衰减
//  4. 其余         -> 不变
func (p *Plant) ApplyDailyUpdate(hasRained bool, today string) bool {
	switch {
	case p.Schedule == nil:
		p.Schedule = NewSchedule(p.WaterDays, today)
		return true
	case hasRained:
		p.Schedule.ResetForRain(today)
		return true
	case !p.Schedule.UpdatedOn(today):
		p.Schedule.Decrement(today)
		return true
	default:
		return false
	}
}
