package analysis

import "github.com/STOCD/OSCR/tree"

// mergeSinglePetLines collapses a pet group down to one level when every
// one of its pets only ever used a single ability, folding the ability
// name into the group so a reader isn't shown a pointless extra level of
// nesting for e.g. "Quantum Mines -> Quantum Mine 34 -> Mine Explosion"
// when every mine only ever fired "Mine Explosion". Applied only to the
// outgoing damage tree, matching the reference parser's single call site.
func mergeSinglePetLines(m *tree.Model[DamageRow]) {
	for _, actor := range m.Children(actorRoot(m, true)) {
		newGroups := map[string]int{}

		for _, groupOrAbility := range append([]int(nil), m.Children(actor)...) {
			pets := m.Children(groupOrAbility)
			if len(pets) < 1 || len(m.Children(pets[0])) == 0 {
				continue // not a pet group: a plain ability with direct targets
			}
			allSingle := true
			for _, pet := range pets {
				if len(m.Children(pet)) != 1 {
					allSingle = false
					break
				}
			}
			if !allSingle {
				continue
			}

			for i := len(pets) - 1; i >= 0; i-- {
				pet := pets[i]
				petChildren := m.Children(pet)
				if len(petChildren) != 1 {
					continue
				}
				ability := petChildren[0]
				abilityName := m.Data(ability).Name
				groupName := m.Data(groupOrAbility).Name

				newName := groupName + " – " + abilityName
				if groupName == abilityName {
					newName = abilityName
				}
				newGroup, ok := newGroups[newName]
				if !ok {
					newGroup = m.NewNode(newName, DamageRow{Name: newName})
					newGroups[newName] = newGroup
				}
				m.RemoveChild(groupOrAbility, pet)
				m.AddChild(newGroup, pet)
				m.ReplaceChildren(pet, m.Children(ability))
			}

			if len(m.Children(groupOrAbility)) == 0 {
				m.RemoveChild(actor, groupOrAbility)
			}
		}

		for _, newGroup := range newGroups {
			m.AddChild(actor, newGroup)
		}
	}
}
