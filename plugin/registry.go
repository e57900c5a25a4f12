package plugin

import (
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/multierr"
)

// Registry 注解注册表
// 管理注解到生成器的映射，确保一个注解只绑定一个生成器
type Registry struct {
	mu sync.RWMutex

	// annotations 注解名 -> 生成器
	annotations map[string]Generator

	// generators 生成器名 -> 生成器
	generators map[string]Generator
}

// NewRegistry 创建新的注册表
func NewRegistry() *Registry {
	return &Registry{
		annotations: make(map[string]Generator),
		generators:  make(map[string]Generator),
	}
}

// Register 注册生成器
// 如果注解已被其他生成器注册，返回错误
func (r *Registry) Register(gen Generator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := gen.Name()
	if _, ok := r.generators[name]; ok {
		return fmt.Errorf("生成器 %q 已注册", name)
	}

	for _, ann := range gen.Annotations() {
		if existing, ok := r.annotations[ann]; ok {
			return fmt.Errorf("注解 @%s 已被生成器 %q 绑定，无法被 %q 再次绑定",
				ann, existing.Name(), name)
		}
	}

	r.generators[name] = gen
	for _, ann := range gen.Annotations() {
		r.annotations[ann] = gen
	}

	return nil
}

// MustRegister 注册生成器，失败时 panic
func (r *Registry) MustRegister(gen Generator) {
	if err := r.Register(gen); err != nil {
		panic(err)
	}
}

// Unregister 取消注册生成器
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	gen, ok := r.generators[name]
	if !ok {
		return fmt.Errorf("生成器 %q 未注册", name)
	}

	for _, ann := range gen.Annotations() {
		delete(r.annotations, ann)
	}
	delete(r.generators, name)

	return nil
}

// GetByAnnotation 根据注解名获取生成器
func (r *Registry) GetByAnnotation(annotation string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gen, ok := r.annotations[annotation]
	return gen, ok
}

// GetByName 根据生成器名获取生成器
func (r *Registry) GetByName(name string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gen, ok := r.generators[name]
	return gen, ok
}

// Generators 返回所有已注册的生成器，按名称排序
func (r *Registry) Generators() []Generator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.generators)
	slices.Sort(names)
	return lo.Map(names, func(name string, _ int) Generator {
		return r.generators[name]
	})
}

// Annotations 返回所有已注册的注解，按名称排序
func (r *Registry) Annotations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := lo.Keys(r.annotations)
	slices.Sort(result)
	return result
}

// IsRegistered 检查注解是否已注册
func (r *Registry) IsRegistered(annotation string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.annotations[annotation]
	return ok
}

// DispatchTargets 将扫描结果分发给对应的生成器
// 返回 map[生成器名] -> 该生成器需要处理的目标
// 注解绑定的生成器不支持目标类型时（例如 @Builder 标注在接口上）返回错误，
// 这类错误在生成阶段是致命的
func (r *Registry) DispatchTargets(result *ScanResult) (map[string][]*AnnotatedTarget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dispatch := make(map[string][]*AnnotatedTarget)
	var errs error

	for _, target := range result.All() {
		for _, ann := range target.Annotations {
			gen, ok := r.annotations[ann.Name]
			if !ok {
				continue
			}
			if !slices.Contains(gen.SupportedTargets(), target.Target.Kind) {
				errs = multierr.Append(errs, fmt.Errorf("%s: @%s 不能用于 %s %s，只支持 %s",
					target.Target.Position, ann.Name, target.Target.Shape(), target.Target.Name,
					joinKinds(gen.SupportedTargets())))
				continue
			}
			if !slices.Contains(dispatch[gen.Name()], target) {
				dispatch[gen.Name()] = append(dispatch[gen.Name()], target)
			}
		}
	}

	return dispatch, errs
}

func joinKinds(kinds []TargetKind) string {
	names := lo.Map(kinds, func(k TargetKind, _ int) string { return k.String() })
	if len(names) == 1 {
		return names[0]
	}
	return fmt.Sprintf("%v", names)
}

// 全局注册表
var globalRegistry = NewRegistry()

// Global 返回全局注册表
func Global() *Registry {
	return globalRegistry
}

// Register 向全局注册表注册生成器
func Register(gen Generator) error {
	return globalRegistry.Register(gen)
}

// MustRegister 向全局注册表注册生成器，失败时 panic
func MustRegister(gen Generator) {
	globalRegistry.MustRegister(gen)
}
