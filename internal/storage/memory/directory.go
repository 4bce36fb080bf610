// Package memory реализует хранилище каталога участников в памяти процесса.
// Хранилище является единственным владельцем записей участников: все методы
// чтения возвращают защитные копии, порядок записей — порядок вставки.
// Перезапуск процесса теряет состояние, долговременное хранение профилей
// принадлежит внешнему бэкенду идентичности.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skillsfinder/skillsfinder/internal/models"
)

// Directory — потокобезопасное хранилище участников каталога.
// Все мутации сериализуются мьютексом, записи при чтении копируются.
type Directory struct {
	mu      sync.RWMutex
	members []models.Member
}

// New создаёт пустое хранилище каталога.
func New() *Directory {
	return &Directory{}
}

// cloneMember возвращает глубокую копию записи участника.
func cloneMember(m models.Member) models.Member {
	c := m
	c.Skills = append([]string(nil), m.Skills...)
	c.Tools = append([]string(nil), m.Tools...)
	c.BorrowedItems = append([]models.Loan(nil), m.BorrowedItems...)
	if m.LastActive != nil {
		t := *m.LastActive
		c.LastActive = &t
	}
	return c
}

// index возвращает позицию первой записи с данным id или -1.
// Вызывающий обязан держать блокировку.
func (d *Directory) index(id string) int {
	for i := range d.members {
		if d.members[i].ID == id {
			return i
		}
	}
	return -1
}

// All возвращает копию списка всех участников в порядке вставки.
func (d *Directory) All() []models.Member {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]models.Member, 0, len(d.members))
	for _, m := range d.members {
		result = append(result, cloneMember(m))
	}
	return result
}

// ByID возвращает участника по идентификатору.
func (d *Directory) ByID(id string) (models.Member, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if i := d.index(id); i != -1 {
		return cloneMember(d.members[i]), true
	}
	return models.Member{}, false
}

// ByEmail возвращает первого участника с данной почтой.
// Сравнение нечувствительно к регистру.
func (d *Directory) ByEmail(email string) (models.Member, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for i := range d.members {
		if d.members[i].Email != "" && strings.EqualFold(d.members[i].Email, email) {
			return cloneMember(d.members[i]), true
		}
	}
	return models.Member{}, false
}

// Add добавляет нового участника и возвращает сохранённую запись.
// Пустой ID заменяется на случайный uuid, чтобы удаление и повторное
// добавление не приводили к коллизиям идентификаторов. Переданный ID
// сохраняется как есть — так хранятся профили, ключом которых служит
// стабильный идентификатор внешнего провайдера. Список займов всегда пустой.
func (d *Directory) Add(m models.Member) models.Member {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored := cloneMember(m)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.BorrowedItems = []models.Loan{}
	d.members = append(d.members, stored)
	return cloneMember(stored)
}

// Update заменяет запись с совпадающим id целиком, без слияния полей.
// Возвращает false, если записи с таким id нет.
func (d *Directory) Update(m models.Member) (models.Member, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.index(m.ID)
	if i == -1 {
		return models.Member{}, false
	}
	d.members[i] = cloneMember(m)
	return cloneMember(d.members[i]), true
}

// Remove удаляет первую запись с данным id.
func (d *Directory) Remove(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.index(id)
	if i == -1 {
		return false
	}
	d.members = append(d.members[:i], d.members[i+1:]...)
	return true
}

// ToggleActive переключает статус активности участника.
func (d *Directory) ToggleActive(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.index(id)
	if i == -1 {
		return false
	}
	d.members[i].IsActive = !d.members[i].IsActive
	return true
}

// SetRole устанавливает роль участника.
func (d *Directory) SetRole(id, role string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.index(id)
	if i == -1 {
		return false
	}
	d.members[i].Role = role
	return true
}

// Borrow записывает выдачу предмета участнику borrowerID от lenderID.
// Существование владельца и самого предмета не проверяется.
func (d *Directory) Borrow(borrowerID, lenderID, itemName string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.index(borrowerID)
	if i == -1 {
		return false
	}
	d.members[i].BorrowedItems = append(d.members[i].BorrowedItems, models.Loan{
		Item:       itemName,
		LenderID:   lenderID,
		BorrowedAt: time.Now(),
	})
	return true
}

// ReturnLoan помечает возвращённым первый активный заём участника borrowerID,
// совпадающий по предмету и владельцу. Возвращает false, если участника нет
// или подходящего активного займа не найдено.
func (d *Directory) ReturnLoan(borrowerID, lenderID, itemName string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.index(borrowerID)
	if i == -1 {
		return false
	}
	for j := range d.members[i].BorrowedItems {
		loan := &d.members[i].BorrowedItems[j]
		if loan.Item == itemName && loan.LenderID == lenderID && loan.ReturnedAt == nil {
			now := time.Now()
			loan.ReturnedAt = &now
			return true
		}
	}
	return false
}

// Search возвращает участников, у которых имя, навык или инструмент содержат
// подстроку query без учёта регистра. Пустой запрос возвращает всех.
func (d *Directory) Search(query string) []models.Member {
	if query == "" {
		return d.All()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	lower := strings.ToLower(query)
	var result []models.Member
	for _, m := range d.members {
		if matchesQuery(m, lower) {
			result = append(result, cloneMember(m))
		}
	}
	return result
}

func matchesQuery(m models.Member, lowerQuery string) bool {
	if strings.Contains(strings.ToLower(m.Name), lowerQuery) {
		return true
	}
	for _, s := range m.Skills {
		if strings.Contains(strings.ToLower(s), lowerQuery) {
			return true
		}
	}
	for _, t := range m.Tools {
		if strings.Contains(strings.ToLower(t), lowerQuery) {
			return true
		}
	}
	return false
}

// UniqueSkills возвращает отсортированный список уникальных навыков всех участников.
func (d *Directory) UniqueSkills() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return uniqueSorted(d.members, func(m models.Member) []string { return m.Skills })
}

// UniqueTools возвращает отсортированный список уникальных инструментов всех участников.
func (d *Directory) UniqueTools() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return uniqueSorted(d.members, func(m models.Member) []string { return m.Tools })
}

func uniqueSorted(members []models.Member, pick func(models.Member) []string) []string {
	set := make(map[string]struct{})
	for _, m := range members {
		for _, v := range pick(m) {
			set[v] = struct{}{}
		}
	}
	result := make([]string, 0, len(set))
	for v := range set {
		result = append(result, v)
	}
	sort.Strings(result)
	return result
}

// TotalActiveLoans возвращает количество невозвращённых займов по всем участникам.
func (d *Directory) TotalActiveLoans() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var count int
	for _, m := range d.members {
		for _, loan := range m.BorrowedItems {
			if loan.ReturnedAt == nil {
				count++
			}
		}
	}
	return count
}

// ResetAllLoans безусловно очищает списки займов всех участников.
// История займов при этом теряется безвозвратно.
func (d *Directory) ResetAllLoans() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.members {
		d.members[i].BorrowedItems = []models.Loan{}
	}
	return true
}
