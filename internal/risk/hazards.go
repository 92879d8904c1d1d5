// Package risk 风险评分核心：规则评分、风险等级、历史特征聚合与看板统计。
// 本包所有函数均为纯函数，输入为调用方一次性取出的提交快照。
package risk

import (
	"fmt"
	"sort"
)

// HazardCategory 危害类别
type HazardCategory string

const (
	HazardNoise      HazardCategory = "noise"
	HazardDust       HazardCategory = "dust"
	HazardChemicals  HazardCategory = "chemicals"
	HazardHeights    HazardCategory = "heights"
	HazardElectrical HazardCategory = "electrical"
	HazardConfined   HazardCategory = "confined"
)

// DefaultHazardWeight 未知类别的基础权重
const DefaultHazardWeight = 10.0

// 每满 8 小时暴露计入的基础分值
var hazardBaseWeights = map[HazardCategory]float64{
	HazardNoise:      15,
	HazardDust:       12,
	HazardChemicals:  20,
	HazardHeights:    25,
	HazardElectrical: 22,
	HazardConfined:   18,
}

// BaseWeight 返回类别的基础权重，未知类别回退 DefaultHazardWeight
func BaseWeight(c HazardCategory) float64 {
	if w, ok := hazardBaseWeights[c]; ok {
		return w
	}
	return DefaultHazardWeight
}

// IsKnown 是否为已登记的危害类别
func (c HazardCategory) IsKnown() bool {
	_, ok := hazardBaseWeights[c]
	return ok
}

// KnownHazards 按名称排序返回全部已登记类别
func KnownHazards() []HazardCategory {
	out := make([]HazardCategory, 0, len(hazardBaseWeights))
	for c := range hazardBaseWeights {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HazardExposure 危害类别 → 当日暴露小时数
type HazardExposure map[HazardCategory]float64

// ExposureFromMap 从持久化的字符串键映射转换
func ExposureFromMap(m map[string]float64) HazardExposure {
	out := make(HazardExposure, len(m))
	for k, v := range m {
		out[HazardCategory(k)] = v
	}
	return out
}

// ToMap 转换为字符串键映射（用于持久化）
func (h HazardExposure) ToMap() map[string]float64 {
	out := make(map[string]float64, len(h))
	for k, v := range h {
		out[string(k)] = v
	}
	return out
}

// TotalHours 当日危害暴露总小时数
func (h HazardExposure) TotalHours() float64 {
	var total float64
	for _, hours := range h {
		total += hours
	}
	return total
}

// Categories 按名称排序返回出现的类别
func (h HazardExposure) Categories() []HazardCategory {
	out := make([]HazardCategory, 0, len(h))
	for c := range h {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate 暴露小时数不能为负
func (h HazardExposure) Validate() error {
	for c, hours := range h {
		if c == "" {
			return fmt.Errorf("危害类别不能为空")
		}
		if hours < 0 {
			return fmt.Errorf("危害 %s 的暴露小时数不能为负: %v", c, hours)
		}
	}
	return nil
}
